package config

import (
	"errors"
	"fmt"

	ma "github.com/multiformats/go-multiaddr"
)

// NetworkConfig 网络配置
type NetworkConfig struct {
	// Name 网络名称，用于引导域名 _dnsaddr.<name>.<root_domain>
	Name string `json:"name"`

	// RootDomain 引导根域名
	RootDomain string `json:"root_domain"`

	// KnownPeers 已知节点（完整地址，以 /p2p/<PeerID> 结尾）
	//
	// 非空时不查询 DNS。
	KnownPeers []string `json:"known_peers,omitempty"`

	// DNSServers 自定义 DNS 服务器（"ip:port"），为空时使用系统配置
	DNSServers []string `json:"dns_servers,omitempty"`
}

// DefaultNetworkConfig 返回默认网络配置
func DefaultNetworkConfig() NetworkConfig {
	return NetworkConfig{
		Name:       "splash",
		RootDomain: "dexie.space",
	}
}

// Validate 验证网络配置
func (c NetworkConfig) Validate() error {
	if c.Name == "" {
		return errors.New("name cannot be empty")
	}
	if c.RootDomain == "" {
		return errors.New("root_domain cannot be empty")
	}
	for _, s := range c.KnownPeers {
		if _, err := ma.NewMultiaddr(s); err != nil {
			return fmt.Errorf("known peer %q: %w: %v", s, ErrInvalidMultiaddr, err)
		}
	}
	return nil
}

// ListenConfig 监听配置
type ListenConfig struct {
	// Addrs 监听地址，为空时监听 IPv4 / IPv6 任意地址的随机端口
	Addrs []string `json:"addrs,omitempty"`
}

// DefaultListenConfig 返回默认监听配置
func DefaultListenConfig() ListenConfig {
	return ListenConfig{}
}

// Validate 验证监听配置
func (c ListenConfig) Validate() error {
	for _, s := range c.Addrs {
		if _, err := ma.NewMultiaddr(s); err != nil {
			return fmt.Errorf("listen address %q: %w: %v", s, ErrInvalidMultiaddr, err)
		}
	}
	return nil
}
