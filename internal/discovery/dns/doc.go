// Package dns 通过 DNS TXT 记录解析引导节点
//
// # 记录格式
//
// 引导域名为 "_dnsaddr.<network>.<root-domain>."，每条 TXT 记录携带一个
// dnsaddr 负载：
//
//	_dnsaddr.splash.dexie.space.  300  IN  TXT  "dnsaddr=/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW..."
//
// 去掉 "dnsaddr=" 前缀后按 multiaddr 解析，无法解析的记录被丢弃。
//
// # 使用示例
//
//	client, err := dns.NewSystemClient()
//	if err != nil {
//	    return err
//	}
//	peers, err := dns.ResolveBootstrapPeers(ctx, client, "splash", "dexie.space", nil)
//
// 已配置已知节点时不发起任何查询，直接返回已知节点。
//
// Client 基于 github.com/miekg/dns，读取系统 resolv.conf 配置，
// 查询时携带 EDNS0，UDP 应答被截断时改用 TCP 重查。
package dns
