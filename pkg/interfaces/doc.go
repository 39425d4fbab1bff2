// Package interfaces 定义 splash 的公共接口
//
// 控制循环只通过本包的接口访问外部协作者，具体实现位于 internal/ 下：
//
//   - network.go  - Network（传输 / pub-sub / DHT / identify），internal/core/host
//   - dns.go      - TXTResolver（DNS TXT 查询），internal/discovery/dns
//
// 测试使用手写的 mock 实现这些接口。
package interfaces
