package dns

import (
	"context"
	"strings"

	ma "github.com/multiformats/go-multiaddr"

	"github.com/splash-p2p/go-splash/internal/util/addrutil"
	"github.com/splash-p2p/go-splash/pkg/interfaces"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("discovery/dns")

// ============================================================================
//                              常量定义
// ============================================================================

const (
	// DNSAddrPrefix TXT 负载前缀
	DNSAddrPrefix = "dnsaddr="

	// DNSAddrDomainPrefix 引导域名前缀
	DNSAddrDomainPrefix = "_dnsaddr."
)

// BootstrapDomain 返回网络的引导域名（完全限定，带尾随点）
func BootstrapDomain(network, rootDomain string) string {
	return DNSAddrDomainPrefix + network + "." + strings.TrimSuffix(rootDomain, ".") + "."
}

// ============================================================================
//                              引导节点解析
// ============================================================================

// ResolveBootstrapPeers 解析引导节点
//
// known 非空时原样返回，不做任何查询。否则查询 BootstrapDomain 的 TXT 记录，
// 去掉 dnsaddr= 前缀并按 multiaddr 解析。无法解析、缺少 /p2p/<PeerID>
// 或缺少传输地址的记录都会被丢弃，返回的每个地址都可以直接加入路由表。
//
// 查询失败返回 *ResolutionError；没有任何可用地址返回 ErrNoPeersFound。
// 不在内部重试，也不额外设置超时。
func ResolveBootstrapPeers(ctx context.Context, resolver interfaces.TXTResolver, network, rootDomain string, known []ma.Multiaddr) ([]ma.Multiaddr, error) {
	if len(known) > 0 {
		return known, nil
	}

	domain := BootstrapDomain(network, rootDomain)
	records, err := resolver.LookupTXT(ctx, domain)
	if err != nil {
		return nil, &ResolutionError{Domain: domain, Err: err}
	}

	peers := make([]ma.Multiaddr, 0, len(records))
	for _, record := range records {
		addr, err := ParseDNSAddr(record)
		if err == nil {
			err = checkPeerAddr(addr)
		}
		if err != nil {
			logger.Debug("丢弃无效 dnsaddr 记录", "domain", domain, "record", record, "error", err)
			continue
		}
		peers = append(peers, addr)
	}

	if len(peers) == 0 {
		return nil, ErrNoPeersFound
	}

	logger.Info("引导节点解析完成", "domain", domain, "records", len(records), "peers", len(peers))
	return peers, nil
}

// ParseDNSAddr 解析单条 TXT 负载
//
// 负载缺少 dnsaddr= 前缀时把整条负载当作 multiaddr 解析。
func ParseDNSAddr(record string) (ma.Multiaddr, error) {
	return ma.NewMultiaddr(strings.TrimPrefix(record, DNSAddrPrefix))
}

// checkPeerAddr 要求地址形如 <transport>/p2p/<PeerID>
func checkPeerAddr(addr ma.Multiaddr) error {
	_, transport, err := addrutil.SplitPeerAddr(addr)
	if err != nil {
		return err
	}
	if transport == nil {
		return ErrMissingTransport
	}
	return nil
}
