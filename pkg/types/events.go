package types

import (
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// ============================================================================
//                              EventKind - 事件类型
// ============================================================================

// EventKind 节点事件类型
type EventKind int

const (
	// KindInitialized 控制循环已启动
	KindInitialized EventKind = iota
	// KindNewListenAddress 绑定了新的监听地址
	KindNewListenAddress
	// KindPeerConnected 节点已连接
	KindPeerConnected
	// KindPeerDisconnected 节点已断开
	KindPeerDisconnected
	// KindOfferReceived 收到 offer
	KindOfferReceived
	// KindOfferBroadcasted offer 已广播
	KindOfferBroadcasted
	// KindOfferBroadcastFailed offer 广播失败
	KindOfferBroadcastFailed
)

// String 返回事件类型的字符串表示
func (k EventKind) String() string {
	switch k {
	case KindInitialized:
		return "initialized"
	case KindNewListenAddress:
		return "new_listen_address"
	case KindPeerConnected:
		return "peer_connected"
	case KindPeerDisconnected:
		return "peer_disconnected"
	case KindOfferReceived:
		return "offer_received"
	case KindOfferBroadcasted:
		return "offer_broadcasted"
	case KindOfferBroadcastFailed:
		return "offer_broadcast_failed"
	default:
		return "unknown"
	}
}

// ============================================================================
//                              NodeEvent - 节点事件
// ============================================================================

// NodeEvent 节点事件
//
// NodeEvent 是一个封闭的变体集合，只有本包定义的类型实现它：
//   - Initialized
//   - NewListenAddress
//   - PeerConnected / PeerDisconnected
//   - OfferReceived / OfferBroadcasted / OfferBroadcastFailed
//
// 事件只由控制循环产生，按产生顺序投递给唯一的消费者。
// 消费方使用 type switch 区分：
//
//	for ev := range node.Events() {
//	    switch e := ev.(type) {
//	    case types.OfferReceived:
//	        fmt.Println(string(e.Offer))
//	    case types.PeerConnected:
//	        fmt.Println("connected", e.PeerID)
//	    }
//	}
type NodeEvent interface {
	// Kind 返回事件类型
	Kind() EventKind

	nodeEvent()
}

// Initialized 控制循环启动事件，每个节点恰好一次，且总是第一个事件
type Initialized struct {
	PeerID peer.ID
}

// NewListenAddress 新监听地址事件
type NewListenAddress struct {
	Addr ma.Multiaddr
}

// PeerConnected 连接建立事件（每条连接一次）
type PeerConnected struct {
	PeerID peer.ID
}

// PeerDisconnected 连接关闭事件（每条连接一次）
type PeerDisconnected struct {
	PeerID peer.ID
}

// OfferReceived 收到 offer 事件
//
// Offer 为网络上收到的原始字节，仅做过前缀嗅探。
type OfferReceived struct {
	Offer []byte
}

// OfferBroadcasted offer 已交给 pub/sub 层发布
type OfferBroadcasted struct {
	Offer []byte
}

// OfferBroadcastFailed offer 发布失败
type OfferBroadcastFailed struct {
	Offer []byte
	Err   error
}

func (Initialized) Kind() EventKind          { return KindInitialized }
func (NewListenAddress) Kind() EventKind     { return KindNewListenAddress }
func (PeerConnected) Kind() EventKind        { return KindPeerConnected }
func (PeerDisconnected) Kind() EventKind     { return KindPeerDisconnected }
func (OfferReceived) Kind() EventKind        { return KindOfferReceived }
func (OfferBroadcasted) Kind() EventKind     { return KindOfferBroadcasted }
func (OfferBroadcastFailed) Kind() EventKind { return KindOfferBroadcastFailed }

func (Initialized) nodeEvent()          {}
func (NewListenAddress) nodeEvent()     {}
func (PeerConnected) nodeEvent()        {}
func (PeerDisconnected) nodeEvent()     {}
func (OfferReceived) nodeEvent()        {}
func (OfferBroadcasted) nodeEvent()     {}
func (OfferBroadcastFailed) nodeEvent() {}

// Reason 返回失败原因
func (e OfferBroadcastFailed) Reason() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// ============================================================================
//                              序列化
// ============================================================================

// EventRecord 事件的扁平 JSON 表示
//
// 用于 websocket 推送与日志，只保留与事件类型相关的字段。
type EventRecord struct {
	Kind   string `json:"kind"`
	PeerID string `json:"peer_id,omitempty"`
	Addr   string `json:"addr,omitempty"`
	Offer  string `json:"offer,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ToRecord 将事件转换为 EventRecord
func ToRecord(ev NodeEvent) (EventRecord, error) {
	rec := EventRecord{}
	switch e := ev.(type) {
	case Initialized:
		rec.PeerID = e.PeerID.String()
	case NewListenAddress:
		if e.Addr != nil {
			rec.Addr = e.Addr.String()
		}
	case PeerConnected:
		rec.PeerID = e.PeerID.String()
	case PeerDisconnected:
		rec.PeerID = e.PeerID.String()
	case OfferReceived:
		rec.Offer = string(e.Offer)
	case OfferBroadcasted:
		rec.Offer = string(e.Offer)
	case OfferBroadcastFailed:
		rec.Offer = string(e.Offer)
		rec.Error = e.Reason()
	default:
		return EventRecord{}, fmt.Errorf("%w: %T", ErrUnknownEventKind, ev)
	}
	rec.Kind = ev.Kind().String()
	return rec, nil
}
