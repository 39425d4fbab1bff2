// Package splash 实现 offer 传播节点
//
// 节点加入一个 libp2p 覆盖网络，在 GossipSub 主题 /splash/offers/1 上
// 广播和接收 offer，并通过 Kademlia DHT 周期性发现新的对等节点。
//
// # 快速开始
//
//	node, err := splash.New().
//	    WithListenAddresses(ma.StringCast("/ip4/0.0.0.0/tcp/11511")).
//	    Build(ctx)
//	if err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	go func() {
//	    for ev := range node.Events() {
//	        if e, ok := ev.(types.OfferReceived); ok {
//	            fmt.Println("Received Offer:", string(e.Offer))
//	        }
//	    }
//	}()
//
//	err = node.SubmitOffer(ctx, "offer1...")
//
// # 引导
//
// 未指定已知节点时，Build 查询 DNS TXT 记录 _dnsaddr.<network>.<root-domain>.
// 获取引导节点，默认网络名为 splash，根域名为 dexie.space。
//
// # 事件
//
// Events 返回唯一的事件流，第一个事件总是 types.Initialized。
// 事件通道容量有限，消费方不读取时控制循环会停顿，offer 提交随之阻塞。
//
// # 依赖注入
//
// Module 从 *config.Config 构建 *Node 并注册生命周期钩子，供 fx 应用使用。
package splash
