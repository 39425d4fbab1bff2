// Package api 提供 splash 节点的 HTTP 接口与 offer 回调
//
// # 端点
//
//	POST /            提交 offer，请求体 {"offer":"offer1..."}
//	POST /offer       同上
//	GET  /metrics     计数器快照（JSON）
//	GET  /metrics/prometheus  Prometheus 文本格式
//	GET  /events      节点事件 websocket 推送
//	GET  /health      健康检查
//
// 提交响应为 {"success":true}，校验失败返回 400 与
// {"success":false,"error":"Offer too large"} 或 "Invalid offer format"。
//
// # 事件分发
//
// 节点事件流只有一个消费者。Dispatch 读取事件流并依次交给各 EventHandler：
// Hub 把事件推送给 websocket 客户端，Hook 把收到的 offer POST 到外部地址。
package api
