// Package dissemination 实现 offer 的提交、广播与入站过滤
//
// # 提交
//
// Submit 先校验 offer（见 internal/protocol/offer），校验失败同步返回错误，
// 不进入队列。通过校验的原始字节写入容量为 QueueCapacity 的提交队列；
// 队列满时调用方阻塞，直到控制循环取走一项、ctx 取消或 Gate 关闭。
//
// # 广播
//
// 控制循环从 Queue 取出 offer 后调用 Broadcast。发布成功产生
// OfferBroadcasted 并累加 offers_broadcasted；失败产生 OfferBroadcastFailed。
// 同一载荷重复发布时两次都报告成功，网络上由 pub/sub 的消息标识去重。
//
// # 入站
//
// Receive 只做前缀嗅探：以 "offer1" 开头的载荷产生 OfferReceived，
// 其余载荷静默丢弃。
package dissemination
