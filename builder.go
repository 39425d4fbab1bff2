package splash

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/libp2p/go-libp2p/core/crypto"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/splash-p2p/go-splash/internal/app"
	"github.com/splash-p2p/go-splash/internal/core/host"
	"github.com/splash-p2p/go-splash/internal/core/identity"
	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/internal/discovery/coordinator"
	"github.com/splash-p2p/go-splash/internal/discovery/dns"
	"github.com/splash-p2p/go-splash/internal/protocol/dissemination"
	"github.com/splash-p2p/go-splash/internal/util/addrutil"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("splash")

// 默认网络参数
const (
	// DefaultNetworkName 默认网络名称
	DefaultNetworkName = "splash"

	// DefaultRootDomain 默认引导根域名
	DefaultRootDomain = "dexie.space"
)

// ════════════════════════════════════════════════════════════════════════════
//                              Builder
// ════════════════════════════════════════════════════════════════════════════

// Builder 节点构建器
//
// 所有 With* 方法返回 Builder 本身以便链式调用。Build 之后再调用 With*
// 不会修改配置，而是记录 ErrAlreadyBuilt，可通过 Err 查看。
type Builder struct {
	mu    sync.Mutex
	built bool
	err   error

	listenAddrs []ma.Multiaddr
	knownPeers  []ma.Multiaddr
	identity    crypto.PrivKey
	networkName string
	rootDomain  string

	resolver interfaces.TXTResolver
	network  interfaces.Network
	metrics  *metrics.Counters

	discoveryInterval time.Duration
	queryTimeout      time.Duration
}

// New 创建未构建的 Builder
func New() *Builder {
	return &Builder{
		networkName:       DefaultNetworkName,
		rootDomain:        DefaultRootDomain,
		discoveryInterval: coordinator.DefaultInterval,
		queryTimeout:      coordinator.DefaultQueryTimeout,
	}
}

// set 在未构建时执行 fn，否则记录 ErrAlreadyBuilt
func (b *Builder) set(fn func()) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		b.err = ErrAlreadyBuilt
		return b
	}
	fn()
	return b
}

// WithListenAddresses 设置监听地址，为空时监听默认地址
func (b *Builder) WithListenAddresses(addrs ...ma.Multiaddr) *Builder {
	return b.set(func() { b.listenAddrs = append([]ma.Multiaddr(nil), addrs...) })
}

// WithKnownPeers 设置已知节点，非空时跳过 DNS 引导
//
// 地址必须以 /p2p/<PeerID> 结尾。
func (b *Builder) WithKnownPeers(addrs ...ma.Multiaddr) *Builder {
	return b.set(func() { b.knownPeers = append([]ma.Multiaddr(nil), addrs...) })
}

// WithIdentity 设置节点私钥，未设置时生成 Ed25519 临时身份
func (b *Builder) WithIdentity(key crypto.PrivKey) *Builder {
	return b.set(func() { b.identity = key })
}

// WithNetworkName 设置网络名称
func (b *Builder) WithNetworkName(name string) *Builder {
	return b.set(func() { b.networkName = name })
}

// WithRootDomain 设置引导根域名
func (b *Builder) WithRootDomain(domain string) *Builder {
	return b.set(func() { b.rootDomain = domain })
}

// WithDNSResolver 设置 TXT 解析器，未设置时使用系统 DNS 配置
func (b *Builder) WithDNSResolver(r interfaces.TXTResolver) *Builder {
	return b.set(func() { b.resolver = r })
}

// WithNetwork 使用外部提供的网络协作者
//
// 节点关闭时一并关闭该网络。
func (b *Builder) WithNetwork(n interfaces.Network) *Builder {
	return b.set(func() { b.network = n })
}

// WithMetrics 使用外部提供的计数器
func (b *Builder) WithMetrics(m *metrics.Counters) *Builder {
	return b.set(func() { b.metrics = m })
}

// WithDiscoveryInterval 设置随机最近节点查询周期
func (b *Builder) WithDiscoveryInterval(d time.Duration) *Builder {
	return b.set(func() { b.discoveryInterval = d })
}

// WithQueryTimeout 设置 DHT 查询超时
func (b *Builder) WithQueryTimeout(d time.Duration) *Builder {
	return b.set(func() { b.queryTimeout = d })
}

// Err 返回构建后误用 Builder 记录的错误
func (b *Builder) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}

// ════════════════════════════════════════════════════════════════════════════
//                              Build
// ════════════════════════════════════════════════════════════════════════════

// Build 构建并启动节点
//
// 依次：解析引导节点、创建网络、绑定监听地址、启动控制循环。
// 前三步任一失败都会释放已创建的资源，不返回部分构建的节点。
// ctx 只约束构建过程，节点的生命周期由 Close 结束。
func (b *Builder) Build(ctx context.Context) (_ *Node, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.built {
		return nil, ErrAlreadyBuilt
	}
	b.built = true

	for _, addr := range b.knownPeers {
		if _, _, err := addrutil.SplitPeerAddr(addr); err != nil {
			return nil, fmt.Errorf("splash: known peer: %w", err)
		}
	}

	// 1. 引导节点
	peers, err := b.resolvePeers(ctx)
	if err != nil {
		return nil, err
	}

	// 2. 网络
	network := b.network
	owned := network == nil
	if owned {
		network, err = b.newNetwork(ctx)
		if err != nil {
			return nil, err
		}
	}
	defer func() {
		if err != nil && owned {
			_ = network.Close()
		}
	}()

	// 3. 监听
	if l, ok := network.(interfaces.Listener); ok {
		if len(b.listenAddrs) > 0 {
			err = l.Listen(b.listenAddrs)
		} else {
			err = l.ListenDefault()
		}
		if err != nil {
			return nil, err
		}
	} else if len(b.listenAddrs) > 0 {
		logger.Warn("网络不支持监听，忽略监听地址", "addrs", len(b.listenAddrs))
	}

	// 4. 发现
	coord, err := coordinator.New(network, network, &coordinator.Config{
		Interval:     b.discoveryInterval,
		QueryTimeout: b.queryTimeout,
	})
	if err != nil {
		return nil, err
	}
	added := coord.AddBootstrapPeers(peers)
	if added == 0 {
		return nil, ErrNoBootstrapPeers
	}
	if bs, ok := network.(interfaces.Bootstrapper); ok {
		if err := bs.Bootstrap(ctx); err != nil {
			logger.Warn("引导失败，依赖周期发现补充节点", "error", err)
		}
	}

	// 5. 控制循环
	m := b.metrics
	if m == nil {
		m = metrics.New()
	}
	gate := dissemination.NewGate(network, m)
	loop := app.NewLoop(network, gate, coord, m)

	node := newNode(network, gate, loop, m)
	node.start(context.WithoutCancel(ctx))

	logger.Info("节点已启动",
		"peer", node.ID().String(),
		"bootstrap", added,
		"network", b.networkName)
	return node, nil
}

// resolvePeers 返回已知节点，为空时查询 DNS
func (b *Builder) resolvePeers(ctx context.Context) ([]ma.Multiaddr, error) {
	if len(b.knownPeers) > 0 {
		return b.knownPeers, nil
	}

	logger.Info("未指定已知节点，从 DNS 引导",
		"domain", dns.BootstrapDomain(b.networkName, b.rootDomain))

	resolver := b.resolver
	if resolver == nil {
		client, err := dns.NewSystemClient()
		if err != nil {
			return nil, fmt.Errorf("splash: dns client: %w", err)
		}
		resolver = client
	}
	return dns.ResolveBootstrapPeers(ctx, resolver, b.networkName, b.rootDomain, nil)
}

// newNetwork 创建 libp2p 网络协作者
func (b *Builder) newNetwork(ctx context.Context) (*host.Network, error) {
	key := b.identity
	if key == nil {
		var err error
		key, err = identity.Generate()
		if err != nil {
			return nil, err
		}
	}

	cfg := host.DefaultConfig()
	cfg.Identity = key
	cfg.QueryTimeout = b.queryTimeout
	cfg.UserAgent = "go-splash/" + Version

	return host.New(context.WithoutCancel(ctx), cfg)
}
