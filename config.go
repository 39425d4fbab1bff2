package splash

import (
	"fmt"

	"github.com/splash-p2p/go-splash/config"
	"github.com/splash-p2p/go-splash/internal/core/identity"
	"github.com/splash-p2p/go-splash/internal/discovery/dns"
	"github.com/splash-p2p/go-splash/internal/util/addrutil"
)

// FromConfig 把 config.Config 转换为 Builder
//
// 身份文件存在时加载，不存在时生成并保存；文件内容无效时使用临时身份。
// 配置了 DNS 服务器时使用这些服务器解析引导域名。
func FromConfig(cfg *config.Config) (*Builder, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	known, err := addrutil.ParsePeerAddrs(cfg.Network.KnownPeers)
	if err != nil {
		return nil, fmt.Errorf("splash: known peers: %w", err)
	}
	listen, err := addrutil.ParseAddrs(cfg.Listen.Addrs)
	if err != nil {
		return nil, fmt.Errorf("splash: listen addresses: %w", err)
	}

	b := New().
		WithNetworkName(cfg.Network.Name).
		WithRootDomain(cfg.Network.RootDomain).
		WithKnownPeers(known...).
		WithListenAddresses(listen...).
		WithDiscoveryInterval(cfg.Discovery.Interval.Duration()).
		WithQueryTimeout(cfg.Discovery.QueryTimeout.Duration())

	if path := cfg.Identity.KeyFile; path != "" {
		key, created, err := identity.LoadOrCreate(path)
		if err != nil {
			return nil, err
		}
		if !created {
			logger.Info("已加载身份文件", "path", path)
		}
		b.WithIdentity(key)
	}

	if len(cfg.Network.DNSServers) > 0 {
		dnsCfg := dns.DefaultClientConfig()
		dnsCfg.Servers = cfg.Network.DNSServers
		client, err := dns.NewClient(dnsCfg)
		if err != nil {
			return nil, fmt.Errorf("splash: dns client: %w", err)
		}
		b.WithDNSResolver(client)
	}

	return b, nil
}
