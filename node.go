package splash

import (
	"context"
	"errors"
	"sync"

	"github.com/libp2p/go-libp2p/core/peer"
	"go.uber.org/multierr"

	"github.com/splash-p2p/go-splash/internal/app"
	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/internal/protocol/dissemination"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/types"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Node
// ════════════════════════════════════════════════════════════════════════════

// Node 运行中的 splash 节点
//
// Node 的方法可以并发调用。
type Node struct {
	id      peer.ID
	network interfaces.Network
	gate    *dissemination.Gate
	loop    *app.Loop
	metrics *metrics.Counters

	cancel context.CancelFunc
	done   chan struct{}
	runErr error

	closeOnce sync.Once
	closeErr  error
}

func newNode(network interfaces.Network, gate *dissemination.Gate, loop *app.Loop, m *metrics.Counters) *Node {
	return &Node{
		id:      network.LocalPeer(),
		network: network,
		gate:    gate,
		loop:    loop,
		metrics: m,
		done:    make(chan struct{}),
	}
}

// start 在后台运行控制循环，循环退出后拒绝新的提交
func (n *Node) start(ctx context.Context) {
	ctx, n.cancel = context.WithCancel(ctx)
	go func() {
		err := n.loop.Run(ctx)
		n.gate.Close()
		if err != nil {
			logger.Warn("控制循环异常退出", "error", err)
		}
		n.runErr = err
		close(n.done)
	}()
}

// ID 返回节点 PeerID
func (n *Node) ID() peer.ID {
	return n.id
}

// SubmitOffer 校验并提交 offer
//
// 校验失败立即返回 offer.ErrOfferTooLarge 或 offer.ErrInvalidOfferFormat。
// 提交队列满时阻塞，直到有空位、ctx 取消或节点关闭（ErrNodeClosed）。
// 返回 nil 表示已入队，广播结果以 OfferBroadcasted / OfferBroadcastFailed 事件给出。
func (n *Node) SubmitOffer(ctx context.Context, candidate string) error {
	return n.gate.Submit(ctx, candidate)
}

// Events 返回节点事件流
//
// 只应有一个消费者。控制循环退出后通道关闭。
func (n *Node) Events() <-chan types.NodeEvent {
	return n.loop.Events()
}

// Metrics 返回计数器快照
func (n *Node) Metrics() metrics.Snapshot {
	return n.metrics.Snapshot()
}

// Counters 返回节点计数器，用于指标导出
func (n *Node) Counters() *metrics.Counters {
	return n.metrics
}

// Pending 返回等待广播的 offer 数
func (n *Node) Pending() int {
	return n.gate.Pending()
}

// Done 控制循环退出后关闭
func (n *Node) Done() <-chan struct{} {
	return n.done
}

// Err 返回控制循环的退出原因
//
// 循环仍在运行或正常停止时返回 nil；网络事件流意外关闭时返回 app.ErrNetworkClosed。
func (n *Node) Err() error {
	select {
	case <-n.done:
		return n.runErr
	default:
		return nil
	}
}

// Close 停止控制循环并关闭网络
//
// 可重复调用，后续调用返回第一次的结果。
func (n *Node) Close() error {
	n.closeOnce.Do(func() {
		n.gate.Close()
		n.cancel()
		<-n.done

		var errs error
		if err := n.Err(); err != nil && !errors.Is(err, app.ErrNetworkClosed) {
			errs = multierr.Append(errs, err)
		}
		errs = multierr.Append(errs, n.network.Close())
		n.closeErr = errs
		logger.Info("节点已关闭", "peer", n.id.String())
	})
	return n.closeErr
}
