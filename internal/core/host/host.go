package host

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/libp2p/go-libp2p"
	dht "github.com/libp2p/go-libp2p-kad-dht"
	pubsub "github.com/libp2p/go-libp2p-pubsub"
	"github.com/libp2p/go-libp2p/core/event"
	lphost "github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/network"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/libp2p/go-libp2p/core/peerstore"
	"github.com/libp2p/go-libp2p/p2p/muxer/yamux"
	"github.com/libp2p/go-libp2p/p2p/net/connmgr"
	"github.com/libp2p/go-libp2p/p2p/security/noise"
	"github.com/libp2p/go-libp2p/p2p/transport/tcp"
	ma "github.com/multiformats/go-multiaddr"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("core/host")

// bootstrapConnectTimeout 单个引导节点的拨号超时
const bootstrapConnectTimeout = 15 * time.Second

// Network libp2p 网络协作者
type Network struct {
	config *Config

	host  lphost.Host
	kad   *dht.IpfsDHT
	ps    *pubsub.PubSub
	topic *pubsub.Topic
	sub   *pubsub.Subscription

	external *externalAddrs
	pump     *eventPump
	idSub    event.Subscription

	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	// lookups 跟踪后台查询，Close 时等待
	lookups sync.WaitGroup

	closeOnce sync.Once
	closeErr  error
	closed    atomic.Bool
}

var _ interfaces.Network = (*Network)(nil)

// New 创建网络协作者
//
// 创建后尚未监听任何地址，需调用 Listen 或 ListenDefault。
// 任一步骤失败都会释放已创建的资源。
func New(ctx context.Context, config *Config) (_ *Network, err error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	n := &Network{
		config:   config,
		external: newExternalAddrs(config.MaxExternalAddrs),
		pump:     newEventPump(config.EventBuffer, config.MaxPendingEvents),
	}
	n.ctx, n.cancel = context.WithCancel(ctx)

	defer func() {
		if err != nil {
			_ = n.release()
		}
	}()

	cmgr, err := connmgr.NewConnManager(config.ConnLowWater, config.ConnHighWater,
		connmgr.WithGracePeriod(config.IdleTimeout))
	if err != nil {
		return nil, fmt.Errorf("host: create connection manager: %w", err)
	}

	n.host, err = libp2p.New(
		libp2p.Identity(config.Identity),
		libp2p.NoListenAddrs,
		libp2p.Transport(tcp.NewTCPTransport),
		libp2p.Security(noise.ID, noise.New),
		libp2p.Muxer(yamux.ID, yamux.DefaultTransport),
		libp2p.ProtocolVersion(config.ProtocolVersion),
		libp2p.UserAgent(config.UserAgent),
		libp2p.ConnectionManager(cmgr),
		libp2p.AddrsFactory(n.external.factory),
	)
	if err != nil {
		return nil, fmt.Errorf("host: create libp2p host: %w", err)
	}

	// 通知必须在监听之前注册，否则会漏掉监听地址事件
	n.host.Network().Notify(&network.NotifyBundle{
		ConnectedF: func(_ network.Network, c network.Conn) {
			n.pump.push(interfaces.ConnectionEstablished{Peer: c.RemotePeer()})
		},
		DisconnectedF: func(_ network.Network, c network.Conn) {
			n.pump.push(interfaces.ConnectionClosed{Peer: c.RemotePeer()})
		},
		ListenF: func(_ network.Network, addr ma.Multiaddr) {
			for _, a := range expandListenAddr(addr) {
				n.pump.push(interfaces.ListenAddressAdded{Addr: a})
			}
		},
	})

	n.idSub, err = n.host.EventBus().Subscribe(new(event.EvtPeerIdentificationCompleted))
	if err != nil {
		return nil, fmt.Errorf("host: subscribe identify events: %w", err)
	}

	n.kad, err = dht.New(n.ctx, n.host,
		dht.Mode(dht.ModeAutoServer),
		dht.V1ProtocolOverride(config.KadProtocol),
	)
	if err != nil {
		return nil, fmt.Errorf("host: create dht: %w", err)
	}

	params := pubsub.DefaultGossipSubParams()
	params.HeartbeatInterval = config.HeartbeatInterval
	n.ps, err = pubsub.NewGossipSub(n.ctx, n.host,
		pubsub.WithGossipSubParams(params),
		pubsub.WithMessageIdFn(MessageID),
		pubsub.WithMaxMessageSize(config.MaxMessageSize),
		pubsub.WithMessageSignaturePolicy(pubsub.StrictSign),
	)
	if err != nil {
		return nil, fmt.Errorf("host: create gossipsub: %w", err)
	}

	n.topic, err = n.ps.Join(config.Topic)
	if err != nil {
		return nil, fmt.Errorf("host: join topic %s: %w", config.Topic, err)
	}
	n.sub, err = n.topic.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("host: subscribe topic %s: %w", config.Topic, err)
	}

	n.group = new(errgroup.Group)
	n.group.Go(func() error { return n.pump.run(n.ctx) })
	n.group.Go(n.readIdentify)
	n.group.Go(n.readSubscription)

	logger.Info("网络已创建",
		"peer", n.host.ID().String(),
		"topic", config.Topic,
		"kad", string(config.KadProtocol))
	return n, nil
}

// ============================================================================
//                              监听
// ============================================================================

// Listen 绑定显式指定的监听地址，任一地址失败即返回错误
func (n *Network) Listen(addrs []ma.Multiaddr) error {
	if n.closed.Load() {
		return ErrClosed
	}
	for _, addr := range addrs {
		if err := n.host.Network().Listen(addr); err != nil {
			return fmt.Errorf("host: listen on %s: %w", addr, err)
		}
	}
	return nil
}

// ListenDefault 绑定默认监听地址
//
// 只要有一个默认地址绑定成功即视为成功（例如主机未启用 IPv6）。
func (n *Network) ListenDefault() error {
	if n.closed.Load() {
		return ErrClosed
	}
	var errs error
	bound := 0
	for _, addr := range DefaultListenAddrs() {
		if err := n.host.Network().Listen(addr); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", addr, err))
			logger.Debug("默认监听地址绑定失败", "addr", addr, "error", err)
			continue
		}
		bound++
	}
	if bound == 0 {
		return fmt.Errorf("%w: %v", ErrNoListenAddrs, errs)
	}
	return nil
}

// ============================================================================
//                              interfaces.Network
// ============================================================================

// LocalPeer 返回本节点 ID
func (n *Network) LocalPeer() peer.ID {
	return n.host.ID()
}

// Events 返回网络事件流
func (n *Network) Events() <-chan interfaces.NetworkEvent {
	return n.pump.out
}

// Publish 在传播主题上发布载荷
//
// 主题上没有已知对端时返回 ErrInsufficientPeers。
func (n *Network) Publish(ctx context.Context, data []byte) error {
	if n.closed.Load() {
		return ErrClosed
	}
	if len(n.topic.ListPeers()) == 0 {
		return ErrInsufficientPeers
	}
	if err := n.topic.Publish(ctx, data); err != nil {
		return fmt.Errorf("host: publish: %w", err)
	}
	return nil
}

// AddAddress 记录对端地址并尝试加入 DHT 路由表
func (n *Network) AddAddress(p peer.ID, addr ma.Multiaddr) {
	if p == n.host.ID() {
		return
	}
	n.host.Peerstore().AddAddr(p, addr, peerstore.AddressTTL)
	if _, err := n.kad.RoutingTable().TryAddPeer(p, true, false); err != nil {
		logger.Debug("加入路由表失败", "peer", log.TruncateID(p.String(), 16), "error", err)
	}
}

// FindClosestPeers 后台执行最近节点查询，超时由 QueryTimeout 控制
func (n *Network) FindClosestPeers(target peer.ID) {
	if n.closed.Load() {
		return
	}
	n.lookups.Add(1)
	go func() {
		defer n.lookups.Done()

		ctx, cancel := context.WithTimeout(n.ctx, n.config.QueryTimeout)
		defer cancel()

		peers, err := n.kad.GetClosestPeers(ctx, string(target))
		if err != nil {
			logger.Debug("最近节点查询失败", "error", err)
			return
		}
		logger.Debug("最近节点查询完成", "found", len(peers))
	}()
}

// AddExternalAddress 记录外部地址，随 identify 通告给对端
func (n *Network) AddExternalAddress(addr ma.Multiaddr) {
	if n.external.add(addr) {
		logger.Debug("记录外部地址", "addr", addr)
	}
}

// ============================================================================
//                              引导
// ============================================================================

// Bootstrap 拨号所有已知地址的节点并启动 DHT 刷新
//
// 拨号在后台并发进行，单个节点失败只记录日志。
func (n *Network) Bootstrap(ctx context.Context) error {
	if n.closed.Load() {
		return ErrClosed
	}

	self := n.host.ID()
	var peers []peer.ID
	for _, p := range n.host.Peerstore().PeersWithAddrs() {
		if p != self {
			peers = append(peers, p)
		}
	}
	n.lookups.Add(1)
	go func() {
		defer n.lookups.Done()

		g, gctx := errgroup.WithContext(n.ctx)
		g.SetLimit(8)
		for _, p := range peers {
			p := p
			g.Go(func() error {
				cctx, cancel := context.WithTimeout(gctx, bootstrapConnectTimeout)
				defer cancel()
				info := n.host.Peerstore().PeerInfo(p)
				if err := n.host.Connect(cctx, info); err != nil {
					logger.Debug("引导节点拨号失败", "peer", log.TruncateID(p.String(), 16), "error", err)
				}
				return nil
			})
		}
		_ = g.Wait()
	}()

	if err := n.kad.Bootstrap(ctx); err != nil {
		return fmt.Errorf("host: bootstrap dht: %w", err)
	}
	logger.Info("开始引导", "peers", len(peers))
	return nil
}

// ============================================================================
//                              事件读取
// ============================================================================

// readIdentify 把 identify 完成事件转为 PeerIdentified
func (n *Network) readIdentify() error {
	for {
		select {
		case <-n.ctx.Done():
			return nil
		case raw, ok := <-n.idSub.Out():
			if !ok {
				return nil
			}
			ev, ok := raw.(event.EvtPeerIdentificationCompleted)
			if !ok {
				continue
			}
			n.pump.push(interfaces.PeerIdentified{
				Peer:         ev.Peer,
				ListenAddrs:  ev.ListenAddrs,
				ObservedAddr: ev.ObservedAddr,
			})
		}
	}
}

// readSubscription 把主题消息转为 MessageReceived，忽略本节点发布的消息
func (n *Network) readSubscription() error {
	self := n.host.ID()
	for {
		msg, err := n.sub.Next(n.ctx)
		if err != nil {
			if n.ctx.Err() != nil || errors.Is(err, pubsub.ErrSubscriptionCancelled) {
				return nil
			}
			logger.Warn("读取订阅失败", "error", err)
			continue
		}
		if msg.ReceivedFrom == self {
			continue
		}
		n.pump.push(interfaces.MessageReceived{From: msg.GetFrom(), Data: msg.GetData()})
	}
}

// ============================================================================
//                              关闭
// ============================================================================

// Close 关闭网络，等待后台 goroutine 退出，事件通道随之关闭
func (n *Network) Close() error {
	n.closeOnce.Do(func() {
		n.closed.Store(true)
		n.closeErr = n.release()
		logger.Info("网络已关闭")
	})
	return n.closeErr
}

// release 按创建的逆序释放资源
func (n *Network) release() error {
	n.cancel()

	var errs error
	// 取消 ctx 后 pubsub 事件循环退出，主题随之失效
	if n.sub != nil {
		n.sub.Cancel()
	}
	if n.kad != nil {
		errs = multierr.Append(errs, n.kad.Close())
	}
	if n.idSub != nil {
		errs = multierr.Append(errs, n.idSub.Close())
	}
	if n.host != nil {
		errs = multierr.Append(errs, n.host.Close())
	}
	if n.group != nil {
		errs = multierr.Append(errs, n.group.Wait())
	} else {
		close(n.pump.out)
	}
	n.lookups.Wait()
	return errs
}
