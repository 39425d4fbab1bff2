// Package coordinator 实现周期性节点发现与 identify 处理
//
// Coordinator 不持有任何 goroutine：控制循环在每个发现周期调用 Tick，
// 在每次 identify 完成时调用 HandleIdentify。
//
//   - Tick 以随机生成的节点 ID 为目标发起"最近节点"查询，用于遍历 DHT
//     并填充路由表。查询本身在网络层后台执行，失败只记录 debug 日志。
//   - HandleIdentify 把对端自述的监听地址中全局可达的部分加入路由表，
//     并把对端观察到的本方地址记录为外部地址（不做过滤）。
//   - AddBootstrapPeers 在启动时把引导节点加入路由表。
package coordinator
