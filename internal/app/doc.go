// Package app 实现节点控制循环
//
// Loop 是唯一持有网络句柄的 goroutine。启动时先输出一次 Initialized，
// 之后在以下三个来源之间公平选择：
//
//   - 提交队列：取出 offer 交给 dissemination.Gate 广播
//   - 发现定时器：调用 coordinator.Coordinator.Tick
//   - 网络事件：连接、消息、identify、监听地址
//
// 节点事件写入容量为 EventCapacity 的输出通道；通道满时循环阻塞在写入上，
// 直到消费者取走事件。单个 offer 或连接上的错误不会终止循环。
package app
