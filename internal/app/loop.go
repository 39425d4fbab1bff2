package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/internal/discovery/coordinator"
	"github.com/splash-p2p/go-splash/internal/protocol/dissemination"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
	"github.com/splash-p2p/go-splash/pkg/types"
)

var logger = log.Logger("app")

// EventCapacity 节点事件输出通道容量
const EventCapacity = 100

// ============================================================================
//                              Loop 结构体
// ============================================================================

// Loop 节点控制循环
type Loop struct {
	network interfaces.Network
	gate    *dissemination.Gate
	coord   *coordinator.Coordinator
	metrics *metrics.Counters

	events  chan types.NodeEvent
	done    chan struct{}
	running atomic.Bool
}

// NewLoop 创建控制循环
func NewLoop(network interfaces.Network, gate *dissemination.Gate, coord *coordinator.Coordinator, m *metrics.Counters) *Loop {
	return &Loop{
		network: network,
		gate:    gate,
		coord:   coord,
		metrics: m,
		events:  make(chan types.NodeEvent, EventCapacity),
		done:    make(chan struct{}),
	}
}

// Events 返回节点事件流
//
// Run 返回时通道被关闭。
func (l *Loop) Events() <-chan types.NodeEvent {
	return l.events
}

// Done Run 返回后关闭
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// ============================================================================
//                              主循环
// ============================================================================

// Run 运行控制循环直到 ctx 取消或网络事件流关闭
//
// ctx 取消时返回 nil；网络事件流关闭时返回 ErrNetworkClosed。
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer close(l.done)
	defer close(l.events)

	self := l.network.LocalPeer()
	if !l.emit(ctx, types.Initialized{PeerID: self}) {
		return nil
	}
	logger.Info("控制循环已启动", "peer", self.String())

	// 启动后立即发起第一次发现，之后按周期进行
	l.coord.Tick()
	ticker := time.NewTicker(l.coord.Interval())
	defer ticker.Stop()

	netEvents := l.network.Events()
	queue := l.gate.Queue()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("控制循环退出", "pending", l.gate.Pending())
			return nil

		case data := <-queue:
			if !l.emit(ctx, l.gate.Broadcast(ctx, data)) {
				return nil
			}

		case <-ticker.C:
			l.coord.Tick()

		case ev, ok := <-netEvents:
			if !ok {
				logger.Warn("网络事件流已关闭")
				return ErrNetworkClosed
			}
			if !l.dispatch(ctx, ev) {
				return nil
			}
		}
	}
}

// dispatch 处理单个网络事件，返回 false 表示 ctx 已取消
func (l *Loop) dispatch(ctx context.Context, ev interfaces.NetworkEvent) bool {
	switch e := ev.(type) {
	case interfaces.ConnectionEstablished:
		l.metrics.PeerConnected()
		logger.Debug("连接建立", "peer", log.TruncateID(e.Peer.String(), 16))
		return l.emit(ctx, types.PeerConnected{PeerID: e.Peer})

	case interfaces.ConnectionClosed:
		l.metrics.PeerDisconnected()
		logger.Debug("连接关闭", "peer", log.TruncateID(e.Peer.String(), 16))
		return l.emit(ctx, types.PeerDisconnected{PeerID: e.Peer})

	case interfaces.MessageReceived:
		out, ok := l.gate.Receive(e.Data)
		if !ok {
			return true
		}
		return l.emit(ctx, out)

	case interfaces.PeerIdentified:
		l.coord.HandleIdentify(e.Peer, e.ListenAddrs, e.ObservedAddr)
		return true

	case interfaces.ListenAddressAdded:
		logger.Info("监听地址", "addr", e.Addr)
		return l.emit(ctx, types.NewListenAddress{Addr: e.Addr})

	default:
		logger.Debug("忽略未知网络事件", "type", ev)
		return true
	}
}

// emit 写入节点事件，通道满时阻塞
func (l *Loop) emit(ctx context.Context, ev types.NodeEvent) bool {
	select {
	case l.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
