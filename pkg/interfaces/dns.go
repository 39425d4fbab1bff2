// Package interfaces 定义 splash 公共接口
//
// 本文件定义 DNS 解析协作者接口，对应 internal/discovery/dns/ 实现。
package interfaces

import "context"

// ════════════════════════════════════════════════════════════════════════════
// TXTResolver 接口
// ════════════════════════════════════════════════════════════════════════════

// TXTResolver DNS TXT 记录解析器
//
// 给定完全限定域名，返回零条或多条 TXT 记录的文本载荷。
// 多段字符串的 TXT 记录按 RFC 7208 的惯例拼接为一条。
//
// 实现不做内部重试，超时策略由底层系统配置决定。
//
// DNS 记录格式:
//
//	_dnsaddr.splash.dexie.space. 300 IN TXT "dnsaddr=/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW..."
type TXTResolver interface {
	// LookupTXT 查询 TXT 记录
	LookupTXT(ctx context.Context, fqdn string) ([]string, error)
}
