// Package types 定义 splash 的公共数据结构
//
// 这是整个系统的最底层包，只依赖 go-libp2p 的 peer 与 go-multiaddr，
// 不依赖任何 splash 内部包。所有类型都是纯值类型，用于在控制循环、
// 门面层与外部消费者之间传递数据。
//
// # 文件组织
//
//   - events.go  - NodeEvent 节点事件（封闭的变体集合）
//   - errors.go  - 公共错误定义
package types
