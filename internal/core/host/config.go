package host

import (
	"errors"
	"time"

	"github.com/libp2p/go-libp2p/core/crypto"
	"github.com/libp2p/go-libp2p/core/protocol"
	ma "github.com/multiformats/go-multiaddr"

	"github.com/splash-p2p/go-splash/internal/protocol/offer"
)

// 固定的协议名称
const (
	// TopicName offer 传播主题
	TopicName = "/splash/offers/1"

	// IdentifyProtocolVersion identify 协议版本字符串
	IdentifyProtocolVersion = "/splash/id/1"

	// KadProtocol DHT 协议
	KadProtocol protocol.ID = "/splash/kad/1"
)

// DefaultListenAddrs 默认监听地址（IPv4 / IPv6 任意地址，随机端口）
func DefaultListenAddrs() []ma.Multiaddr {
	return []ma.Multiaddr{
		ma.StringCast("/ip4/0.0.0.0/tcp/0"),
		ma.StringCast("/ip6/::/tcp/0"),
	}
}

// Config Network 配置
type Config struct {
	// Identity 节点私钥
	Identity crypto.PrivKey

	// ProtocolVersion identify 协议版本
	ProtocolVersion string

	// UserAgent identify 用户代理
	UserAgent string

	// Topic 传播主题
	Topic string

	// KadProtocol DHT 协议 ID
	KadProtocol protocol.ID

	// QueryTimeout 最近节点查询超时
	QueryTimeout time.Duration

	// IdleTimeout 新连接的保护期，期满后空闲连接可被回收
	IdleTimeout time.Duration

	// HeartbeatInterval GossipSub 心跳周期
	HeartbeatInterval time.Duration

	// MaxMessageSize GossipSub 单条 RPC 上限
	MaxMessageSize int

	// ConnLowWater / ConnHighWater 连接管理水位
	ConnLowWater  int
	ConnHighWater int

	// EventBuffer 事件通道容量
	EventBuffer int

	// MaxPendingEvents 泵中积压事件上限，超出后丢弃新事件
	MaxPendingEvents int

	// MaxExternalAddrs 记录的外部地址上限
	MaxExternalAddrs int
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		ProtocolVersion:   IdentifyProtocolVersion,
		UserAgent:         "go-splash",
		Topic:             TopicName,
		KadProtocol:       KadProtocol,
		QueryTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		HeartbeatInterval: 5 * time.Second,
		// offer 上限加上签名、公钥、序号等消息封装
		MaxMessageSize:   offer.MaxSize + 16*1024,
		ConnLowWater:     64,
		ConnHighWater:    256,
		EventBuffer:      256,
		MaxPendingEvents: 16384,
		MaxExternalAddrs: 32,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Identity == nil {
		return ErrNilIdentity
	}
	if c.Topic == "" {
		return errors.New("host: topic cannot be empty")
	}
	if c.KadProtocol == "" {
		return errors.New("host: kad protocol cannot be empty")
	}
	if c.QueryTimeout <= 0 || c.HeartbeatInterval <= 0 {
		return errors.New("host: timeouts must be positive")
	}
	if c.MaxMessageSize < offer.MaxSize {
		return errors.New("host: max message size smaller than max offer size")
	}
	if c.ConnLowWater <= 0 || c.ConnHighWater < c.ConnLowWater {
		return errors.New("host: invalid connection watermarks")
	}
	if c.EventBuffer <= 0 || c.MaxPendingEvents <= 0 {
		return errors.New("host: event buffers must be positive")
	}
	return nil
}
