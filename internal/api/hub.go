package api

import (
	"sync"
	"sync/atomic"

	"github.com/splash-p2p/go-splash/pkg/types"
)

// DefaultSubscriberBuffer 每个订阅者的缓冲事件数
const DefaultSubscriberBuffer = 64

// ============================================================================
//                              Hub
// ============================================================================

// Hub 把节点事件扇出给多个订阅者
//
// 发布不阻塞：订阅者缓冲已满时丢弃该事件并计数。
type Hub struct {
	buffer int

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool

	dropped atomic.Uint64
}

// Subscription 一个事件订阅
type Subscription struct {
	hub  *Hub
	ch   chan types.EventRecord
	once sync.Once
}

// NewHub 创建 Hub，buffer <= 0 时使用 DefaultSubscriberBuffer
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Hub{
		buffer: buffer,
		subs:   make(map[*Subscription]struct{}),
	}
}

// Subscribe 新建订阅，Hub 关闭后返回的订阅通道立即关闭
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{hub: h, ch: make(chan types.EventRecord, h.buffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		s.once.Do(func() {})
		return s
	}
	h.subs[s] = struct{}{}
	return s
}

// HandleEvent 实现 EventHandler
func (h *Hub) HandleEvent(ev types.NodeEvent) {
	rec, err := types.ToRecord(ev)
	if err != nil {
		logger.Debug("忽略无法序列化的事件", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs {
		select {
		case s.ch <- rec:
		default:
			h.dropped.Add(1)
		}
	}
}

// Subscribers 当前订阅者数量
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Dropped 因订阅者缓冲已满而丢弃的事件数
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// Close 关闭 Hub 及所有订阅
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.once.Do(func() { close(s.ch) })
		delete(h.subs, s)
	}
}

// C 返回事件通道
func (s *Subscription) C() <-chan types.EventRecord {
	return s.ch
}

// Cancel 取消订阅
func (s *Subscription) Cancel() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	delete(s.hub.subs, s)
	s.once.Do(func() { close(s.ch) })
}
