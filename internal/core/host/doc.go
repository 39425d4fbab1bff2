// Package host 基于 go-libp2p 实现节点的网络协作者
//
// # 架构
//
// Network 聚合以下组件，对外实现 interfaces.Network：
//   - libp2p Host: TCP 传输、Noise 加密、Yamux 多路复用、identify、连接管理
//   - GossipSub: 订阅 offer 传播主题，消息标识为载荷的 BLAKE3 摘要
//   - Kademlia DHT: 路由表与最近节点查询（协议 /splash/kad/1）
//
// libp2p 的异步回调（连接通知、identify 事件、订阅读取）全部进入一个
// 非阻塞的 FIFO 泵，再由泵写入有界的事件通道，回调本身从不等待控制循环。
//
// # 使用示例
//
//	cfg := host.DefaultConfig()
//	cfg.Identity = priv
//
//	n, err := host.New(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer n.Close()
//
//	if err := n.ListenDefault(); err != nil {
//	    return err
//	}
//	for ev := range n.Events() {
//	    // ...
//	}
package host
