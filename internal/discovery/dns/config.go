package dns

import (
	"errors"
	"net"
	"time"

	mdns "github.com/miekg/dns"
)

// ============================================================================
//                              配置定义
// ============================================================================

// resolvConfPath 系统 DNS 配置路径
const resolvConfPath = "/etc/resolv.conf"

// ClientConfig DNS 客户端配置
type ClientConfig struct {
	// Servers DNS 服务器地址（格式: "ip:port"）
	Servers []string

	// Timeout 单次查询超时
	Timeout time.Duration

	// Attempts 每个服务器的尝试次数
	Attempts int

	// UDPSize EDNS0 通告的 UDP 载荷大小
	UDPSize uint16
}

// DefaultClientConfig 默认配置（不含服务器）
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:  5 * time.Second,
		Attempts: 2,
		UDPSize:  mdns.DefaultMsgSize,
	}
}

// SystemClientConfig 从系统 resolv.conf 读取配置
func SystemClientConfig() (ClientConfig, error) {
	return clientConfigFromFile(resolvConfPath)
}

func clientConfigFromFile(path string) (ClientConfig, error) {
	rc, err := mdns.ClientConfigFromFile(path)
	if err != nil {
		return ClientConfig{}, err
	}

	cfg := DefaultClientConfig()
	for _, s := range rc.Servers {
		cfg.Servers = append(cfg.Servers, net.JoinHostPort(s, rc.Port))
	}
	if rc.Timeout > 0 {
		cfg.Timeout = time.Duration(rc.Timeout) * time.Second
	}
	if rc.Attempts > 0 {
		cfg.Attempts = rc.Attempts
	}
	return cfg, nil
}

// Validate 验证配置
func (c *ClientConfig) Validate() error {
	if len(c.Servers) == 0 {
		return ErrNoServers
	}
	if c.Timeout <= 0 {
		return errors.New("dns: timeout must be positive")
	}
	if c.Attempts <= 0 {
		return errors.New("dns: attempts must be positive")
	}
	return nil
}
