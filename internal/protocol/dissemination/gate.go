package dissemination

import (
	"context"
	"sync"

	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/internal/protocol/offer"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
	"github.com/splash-p2p/go-splash/pkg/types"
)

var logger = log.Logger("protocol/dissemination")

// QueueCapacity 提交队列容量
const QueueCapacity = 100

// Gate offer 传播入口
type Gate struct {
	publisher interfaces.Publisher
	metrics   *metrics.Counters

	queue chan []byte

	closeOnce sync.Once
	closed    chan struct{}
}

// NewGate 创建 Gate
func NewGate(publisher interfaces.Publisher, m *metrics.Counters) *Gate {
	if m == nil {
		m = metrics.New()
	}
	return &Gate{
		publisher: publisher,
		metrics:   m,
		queue:     make(chan []byte, QueueCapacity),
		closed:    make(chan struct{}),
	}
}

// ============================================================================
//                              提交
// ============================================================================

// Submit 校验并排队一个 offer
//
// 返回 nil 只表示已入队，不表示已广播；广播结果以事件形式给出。
func (g *Gate) Submit(ctx context.Context, candidate string) error {
	data, err := offer.Validate(candidate)
	if err != nil {
		return err
	}

	select {
	case <-g.closed:
		return ErrClosed
	default:
	}

	select {
	case g.queue <- data:
		return nil
	case <-g.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Queue 返回提交队列的接收端，只供控制循环使用
func (g *Gate) Queue() <-chan []byte {
	return g.queue
}

// Pending 返回队列中等待广播的 offer 数
func (g *Gate) Pending() int {
	return len(g.queue)
}

// Close 关闭 Gate，阻塞中的 Submit 返回 ErrClosed
//
// 队列本身不关闭，已入队的 offer 留给控制循环处理或丢弃。
func (g *Gate) Close() {
	g.closeOnce.Do(func() { close(g.closed) })
}

// ============================================================================
//                              广播 / 入站
// ============================================================================

// Broadcast 发布 offer 并返回对应事件
func (g *Gate) Broadcast(ctx context.Context, data []byte) types.NodeEvent {
	if err := g.publisher.Publish(ctx, data); err != nil {
		logger.Debug("offer 广播失败", "size", len(data), "error", err)
		return types.OfferBroadcastFailed{Offer: data, Err: err}
	}
	g.metrics.OfferBroadcasted()
	return types.OfferBroadcasted{Offer: data}
}

// Receive 处理入站载荷
//
// 不以 offer.Tag 开头的载荷返回 false，不产生事件也不计数。
func (g *Gate) Receive(data []byte) (types.NodeEvent, bool) {
	if !offer.HasTag(data) {
		logger.Debug("丢弃非 offer 载荷", "size", len(data))
		return nil, false
	}
	g.metrics.OfferReceived()
	return types.OfferReceived{Offer: data}, true
}
