// Package config 提供 splash 节点的统一配置
//
// 主 Config 结构体按功能嵌入子配置，每个子配置在独立文件中定义，
// 提供 DefaultXConfig 与 Validate：
//
//	cfg := config.NewConfig()
//	cfg.Network.KnownPeers = []string{"/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW..."}
//
//	// 从 JSON 加载（缺省字段保持默认值）
//	cfg, err := config.LoadFile("splash.json")
//
//	// 环境变量覆盖（SPLASH_* 前缀，可先从 .env 文件载入）
//	_ = config.LoadDotEnv(".env")
//	config.ApplyEnv(cfg, os.LookupEnv)
//
// 优先级（从高到低）：命令行参数、环境变量、配置文件、默认值。
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config splash 节点完整配置
type Config struct {
	// Network 网络名称、引导域名与已知节点
	Network NetworkConfig `json:"network"`

	// Listen 监听地址
	Listen ListenConfig `json:"listen"`

	// Discovery 周期发现
	Discovery DiscoveryConfig `json:"discovery"`

	// Identity 身份文件
	Identity IdentityConfig `json:"identity"`

	// API offer 提交与观测接口
	API APIConfig `json:"api"`

	// Hook 收到 offer 时的回调
	Hook HookConfig `json:"hook"`

	// Log 日志
	Log LogConfig `json:"log"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Network:   DefaultNetworkConfig(),
		Listen:    DefaultListenConfig(),
		Discovery: DefaultDiscoveryConfig(),
		Identity:  DefaultIdentityConfig(),
		API:       DefaultAPIConfig(),
		Hook:      DefaultHookConfig(),
		Log:       DefaultLogConfig(),
	}
}

// Validate 验证所有子配置
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	validators := []struct {
		name string
		fn   func() error
	}{
		{"network", c.Network.Validate},
		{"listen", c.Listen.Validate},
		{"discovery", c.Discovery.Validate},
		{"identity", c.Identity.Validate},
		{"api", c.API.Validate},
		{"hook", c.Hook.Validate},
		{"log", c.Log.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("config: %s: %w", v.name, err)
		}
	}
	return nil
}

// FromJSON 从 JSON 解析配置，未出现的字段保持默认值
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: 用户指定的配置文件路径是预期行为
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return FromJSON(data)
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
