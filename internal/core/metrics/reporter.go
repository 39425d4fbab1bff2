package metrics

import (
	"context"
	"time"

	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("core/metrics")

// Report 周期性输出指标快照日志，直到 ctx 取消
//
// 与上一次快照相同时不输出。
func Report(ctx context.Context, c *Counters, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last Snapshot
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := c.Snapshot()
			if snap == last {
				continue
			}
			last = snap
			logger.Info("指标快照",
				"peers", snap.Peers,
				"offers_broadcasted", snap.OffersBroadcasted,
				"offers_received", snap.OffersReceived,
				"total_connections", snap.TotalConnections)
		}
	}
}
