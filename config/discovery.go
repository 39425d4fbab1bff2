package config

import (
	"errors"
	"time"
)

// DiscoveryConfig 周期发现配置
type DiscoveryConfig struct {
	// Interval 随机最近节点查询的周期
	Interval Duration `json:"interval"`

	// QueryTimeout 单次 DHT 查询超时
	QueryTimeout Duration `json:"query_timeout"`
}

// DefaultDiscoveryConfig 返回默认发现配置
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{
		Interval:     Duration(10 * time.Second),
		QueryTimeout: Duration(60 * time.Second),
	}
}

// Validate 验证发现配置
func (c DiscoveryConfig) Validate() error {
	if c.Interval <= 0 {
		return errors.New("interval must be positive")
	}
	if c.QueryTimeout <= 0 {
		return errors.New("query_timeout must be positive")
	}
	return nil
}

// IdentityConfig 身份配置
type IdentityConfig struct {
	// KeyFile 身份文件路径
	//
	// 为空时每次启动生成临时身份；文件不存在时生成并保存。
	KeyFile string `json:"key_file,omitempty"`
}

// DefaultIdentityConfig 返回默认身份配置
func DefaultIdentityConfig() IdentityConfig {
	return IdentityConfig{}
}

// Validate 验证身份配置
func (c IdentityConfig) Validate() error {
	return nil
}
