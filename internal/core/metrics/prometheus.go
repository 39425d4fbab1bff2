package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace Prometheus 指标命名空间
const Namespace = "splash"

// Collector 把 Counters 暴露为 Prometheus 指标
//
// 指标值在抓取时从 Counters 读取，不另外保存状态。
type Collector struct {
	metrics []prometheus.Collector
}

// NewCollector 创建 Prometheus 收集器
func NewCollector(c *Counters) *Collector {
	return &Collector{
		metrics: []prometheus.Collector{
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: Namespace,
				Name:      "peers",
				Help:      "Number of currently open peer connections.",
			}, func() float64 { return float64(c.Peers()) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "offers_broadcasted_total",
				Help:      "Offers successfully published to the network.",
			}, func() float64 { return float64(c.offersBroadcasted.Load()) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "offers_received_total",
				Help:      "Offers received from the network.",
			}, func() float64 { return float64(c.offersReceived.Load()) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: Namespace,
				Name:      "connections_total",
				Help:      "Peer connections established since start.",
			}, func() float64 { return float64(c.totalConnections.Load()) }),
		},
	}
}

// Describe 实现 prometheus.Collector
func (col *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, m := range col.metrics {
		m.Describe(ch)
	}
}

// Collect 实现 prometheus.Collector
func (col *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range col.metrics {
		m.Collect(ch)
	}
}

// NewRegistry 创建只包含节点指标的注册表
func NewRegistry(c *Counters) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewCollector(c))
	return reg
}
