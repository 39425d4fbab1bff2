package api

import (
	"context"

	"github.com/splash-p2p/go-splash/pkg/types"
)

// EventHandler 节点事件处理器
//
// HandleEvent 在分发 goroutine 中依次调用，不应阻塞。
type EventHandler interface {
	HandleEvent(ev types.NodeEvent)
}

// EventHandlerFunc 函数形式的 EventHandler
type EventHandlerFunc func(ev types.NodeEvent)

// HandleEvent 实现 EventHandler
func (f EventHandlerFunc) HandleEvent(ev types.NodeEvent) {
	f(ev)
}

// Dispatch 读取事件流并分发给所有处理器
//
// 事件流关闭或 ctx 取消时返回。nil 处理器被忽略。
func Dispatch(ctx context.Context, events <-chan types.NodeEvent, handlers ...EventHandler) {
	active := make([]EventHandler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			active = append(active, h)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			for _, h := range active {
				h.HandleEvent(ev)
			}
		}
	}
}
