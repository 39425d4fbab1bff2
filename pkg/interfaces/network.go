// Package interfaces 定义 splash 公共接口
//
// 本文件定义网络协作者接口（传输 / pub-sub / DHT / identify），
// 对应 internal/core/host/ 实现。
package interfaces

import (
	"context"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// ════════════════════════════════════════════════════════════════════════════
// 网络事件
// ════════════════════════════════════════════════════════════════════════════

// NetworkEvent 网络协作者产生的事件
//
// 封闭的变体集合：
//   - ConnectionEstablished / ConnectionClosed
//   - MessageReceived
//   - PeerIdentified
//   - ListenAddressAdded
type NetworkEvent interface {
	networkEvent()
}

// ConnectionEstablished 连接建立（每条连接一次）
type ConnectionEstablished struct {
	Peer peer.ID
}

// ConnectionClosed 连接关闭（每条连接一次）
type ConnectionClosed struct {
	Peer peer.ID
}

// MessageReceived 在传播主题上收到的消息
//
// Data 为原始载荷；同一消息标识在本进程内至多投递一次。
type MessageReceived struct {
	From peer.ID
	Data []byte
}

// PeerIdentified identify 握手完成
type PeerIdentified struct {
	// Peer 远端节点
	Peer peer.ID

	// ListenAddrs 远端自述的监听地址
	ListenAddrs []ma.Multiaddr

	// ObservedAddr 远端观察到的我方地址（未经验证的自述）
	ObservedAddr ma.Multiaddr
}

// ListenAddressAdded 绑定了新的本地监听地址
type ListenAddressAdded struct {
	Addr ma.Multiaddr
}

func (ConnectionEstablished) networkEvent() {}
func (ConnectionClosed) networkEvent()      {}
func (MessageReceived) networkEvent()       {}
func (PeerIdentified) networkEvent()        {}
func (ListenAddressAdded) networkEvent()    {}

// ════════════════════════════════════════════════════════════════════════════
// 协作者接口
// ════════════════════════════════════════════════════════════════════════════

// Publisher 在传播主题上发布消息
type Publisher interface {
	// Publish 发布原始字节
	//
	// 没有可发送的对端时返回错误；重复载荷由消息标识去重。
	Publish(ctx context.Context, data []byte) error
}

// RoutingTable DHT 路由表操作
type RoutingTable interface {
	// AddAddress 将地址加入路由表，以 peer 为键
	AddAddress(p peer.ID, addr ma.Multiaddr)

	// FindClosestPeers 发起"查找距离 target 最近的节点"查询
	//
	// 查询在后台进行，调用立即返回；失败只表现为没有新节点。
	FindClosestPeers(target peer.ID)
}

// ExternalAddrs 本节点对外通告地址
type ExternalAddrs interface {
	// AddExternalAddress 记录一个外部可达地址
	AddExternalAddress(addr ma.Multiaddr)
}

// Network 网络协作者
//
// Network 由控制循环独占：除 Events 通道外，所有方法只应在控制循环中调用。
type Network interface {
	Publisher
	RoutingTable
	ExternalAddrs

	// LocalPeer 返回本节点 ID
	LocalPeer() peer.ID

	// Events 返回网络事件流
	//
	// 网络关闭后通道被关闭。
	Events() <-chan NetworkEvent

	// Close 关闭网络
	Close() error
}

// Bootstrapper 可选的引导能力
//
// 已加入引导节点后，由节点构建流程调用一次。
type Bootstrapper interface {
	Bootstrap(ctx context.Context) error
}

// Listener 可选的监听能力
//
// 节点构建流程在启动控制循环之前调用：显式地址用 Listen，
// 未指定地址时用 ListenDefault。
type Listener interface {
	Listen(addrs []ma.Multiaddr) error
	ListenDefault() error
}
