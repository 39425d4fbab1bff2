package metrics

import (
	"sync/atomic"
)

// Counters 节点计数器
type Counters struct {
	peers             atomic.Int64
	offersBroadcasted atomic.Uint64
	offersReceived    atomic.Uint64
	totalConnections  atomic.Uint64
}

// New 创建计数器
func New() *Counters {
	return &Counters{}
}

// Snapshot 计数器快照
type Snapshot struct {
	Peers             uint64 `json:"peers"`
	OffersBroadcasted uint64 `json:"offers_broadcasted"`
	OffersReceived    uint64 `json:"offers_received"`
	TotalConnections  uint64 `json:"total_connections"`
}

// PeerConnected 记录一次连接建立
func (c *Counters) PeerConnected() {
	c.peers.Add(1)
	c.totalConnections.Add(1)
}

// PeerDisconnected 记录一次连接关闭，peers 不会低于 0
func (c *Counters) PeerDisconnected() {
	for {
		cur := c.peers.Load()
		if cur <= 0 {
			return
		}
		if c.peers.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

// OfferBroadcasted 记录一次成功广播
func (c *Counters) OfferBroadcasted() {
	c.offersBroadcasted.Add(1)
}

// OfferReceived 记录一次收到 offer
func (c *Counters) OfferReceived() {
	c.offersReceived.Add(1)
}

// Peers 当前连接数
func (c *Counters) Peers() uint64 {
	if n := c.peers.Load(); n > 0 {
		return uint64(n)
	}
	return 0
}

// Snapshot 读取当前值
//
// 各字段分别原子读取，快照整体不保证是同一时刻的值。
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Peers:             c.Peers(),
		OffersBroadcasted: c.offersBroadcasted.Load(),
		OffersReceived:    c.offersReceived.Load(),
		TotalConnections:  c.totalConnections.Load(),
	}
}
