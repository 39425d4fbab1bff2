// Package metrics 提供节点运行计数器
//
// Counters 由控制循环写入，可被任意 goroutine 并发读取，只增不重置
// （peers 随断开递减）。
//
//	c := metrics.New()
//	c.PeerConnected()
//	snap := c.Snapshot()
//
// NewCollector 把同一组计数器暴露为 Prometheus 指标，供 /metrics/prometheus 使用；
// Report 周期性地把快照写入日志。
package metrics
