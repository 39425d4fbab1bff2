package coordinator

import (
	"crypto/rand"
	"time"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
	mh "github.com/multiformats/go-multihash"

	"github.com/splash-p2p/go-splash/internal/util/addrutil"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("discovery/coordinator")

// ============================================================================
//                              Coordinator 结构体
// ============================================================================

// Coordinator 发现协调器
type Coordinator struct {
	config   *Config
	routing  interfaces.RoutingTable
	external interfaces.ExternalAddrs

	// filter 判断 identify 地址能否进入路由表
	filter func(ma.Multiaddr) bool
}

// New 创建协调器
//
// external 可以为 nil，此时忽略观察地址。
func New(routing interfaces.RoutingTable, external interfaces.ExternalAddrs, config *Config) (*Coordinator, error) {
	if routing == nil {
		return nil, ErrNilRoutingTable
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Coordinator{
		config:   config,
		routing:  routing,
		external: external,
		filter:   addrutil.IsGloballyReachable,
	}, nil
}

// Interval 返回发现周期
func (c *Coordinator) Interval() time.Duration {
	return c.config.Interval
}

// ============================================================================
//                              周期发现
// ============================================================================

// Tick 以随机目标发起一次最近节点查询
//
// 立即返回，返回值为本次查询的目标。
func (c *Coordinator) Tick() peer.ID {
	target, err := RandomPeerID()
	if err != nil {
		logger.Debug("生成随机查询目标失败", "error", err)
		return ""
	}
	logger.Debug("发起随机节点查询", "target", log.TruncateID(target.String(), 16))
	c.routing.FindClosestPeers(target)
	return target
}

// RandomPeerID 生成随机节点 ID
//
// 对 32 字节随机数取 SHA2-256 multihash 作为查询目标。
func RandomPeerID() (peer.ID, error) {
	var buf [32]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	h, err := mh.Sum(buf[:], mh.SHA2_256, -1)
	if err != nil {
		return "", err
	}
	return peer.ID(h), nil
}

// ============================================================================
//                              identify 处理
// ============================================================================

// HandleIdentify 处理 identify 结果
//
// 全局可达的监听地址以 p 为键加入路由表；observed 非空时记录为外部地址。
// 返回加入路由表的地址数。
func (c *Coordinator) HandleIdentify(p peer.ID, listenAddrs []ma.Multiaddr, observed ma.Multiaddr) int {
	accepted := 0
	for _, addr := range listenAddrs {
		if addr == nil || !c.filter(addr) {
			continue
		}
		c.routing.AddAddress(p, addr)
		accepted++
	}

	if observed != nil && c.external != nil {
		c.external.AddExternalAddress(observed)
	}

	logger.Debug("identify 完成",
		"peer", log.TruncateID(p.String(), 16),
		"listen", len(listenAddrs),
		"accepted", accepted)
	return accepted
}

// ============================================================================
//                              引导节点
// ============================================================================

// AddBootstrapPeers 把引导节点加入路由表
//
// 地址必须以 /p2p/<PeerID> 结尾，否则跳过并记录警告。引导地址不经过可达性过滤。
// 返回加入的地址数。
func (c *Coordinator) AddBootstrapPeers(addrs []ma.Multiaddr) int {
	added := 0
	for _, addr := range addrs {
		id, transport, err := addrutil.SplitPeerAddr(addr)
		if err != nil {
			logger.Warn("跳过引导地址", "addr", addr, "error", err)
			continue
		}
		if transport == nil {
			logger.Warn("跳过引导地址", "addr", addr, "error", "missing transport address")
			continue
		}
		c.routing.AddAddress(id, transport)
		added++
	}
	return added
}
