package host

import (
	"context"
	"sync"

	"github.com/splash-p2p/go-splash/pkg/interfaces"
)

// eventPump 非阻塞 FIFO
//
// push 从不阻塞；run 按入队顺序把事件写入 out，out 满时只阻塞 run 自身。
type eventPump struct {
	mu         sync.Mutex
	queue      []interfaces.NetworkEvent
	maxPending int
	dropped    uint64
	stopped    bool

	signal chan struct{}
	out    chan interfaces.NetworkEvent
}

func newEventPump(buffer, maxPending int) *eventPump {
	return &eventPump{
		maxPending: maxPending,
		signal:     make(chan struct{}, 1),
		out:        make(chan interfaces.NetworkEvent, buffer),
	}
}

// push 入队事件，积压超过上限时丢弃
//
// 连接事件不受上限约束，否则连接计数会永久偏离。连接数由连接管理器限制。
func (p *eventPump) push(ev interfaces.NetworkEvent) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	if len(p.queue) >= p.maxPending && !isConnEvent(ev) {
		p.dropped++
		dropped := p.dropped
		p.mu.Unlock()
		if dropped == 1 || dropped%1000 == 0 {
			logger.Warn("网络事件积压，丢弃新事件", "dropped", dropped)
		}
		return
	}
	p.queue = append(p.queue, ev)
	p.mu.Unlock()

	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func isConnEvent(ev interfaces.NetworkEvent) bool {
	switch ev.(type) {
	case interfaces.ConnectionEstablished, interfaces.ConnectionClosed:
		return true
	default:
		return false
	}
}

// pop 取出队首事件
func (p *eventPump) pop() (interfaces.NetworkEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil, false
	}
	ev := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return ev, true
}

// run 持续转发事件直到 ctx 取消，返回前关闭 out
func (p *eventPump) run(ctx context.Context) error {
	defer func() {
		p.mu.Lock()
		p.stopped = true
		p.queue = nil
		p.mu.Unlock()
		close(p.out)
	}()

	for {
		ev, ok := p.pop()
		if !ok {
			select {
			case <-p.signal:
				continue
			case <-ctx.Done():
				return nil
			}
		}
		select {
		case p.out <- ev:
		case <-ctx.Done():
			return nil
		}
	}
}
