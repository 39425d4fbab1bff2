package coordinator

import (
	"fmt"
	"time"
)

const (
	// DefaultInterval 默认发现周期
	DefaultInterval = 10 * time.Second

	// DefaultQueryTimeout DHT 查询超时（由网络层应用）
	DefaultQueryTimeout = 60 * time.Second
)

// Config 协调器配置
type Config struct {
	// Interval 随机查询周期
	Interval time.Duration

	// QueryTimeout 单次最近节点查询的超时
	QueryTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Interval:     DefaultInterval,
		QueryTimeout: DefaultQueryTimeout,
	}
}

// Validate 验证配置
func (c *Config) Validate() error {
	if c.Interval <= 0 {
		return fmt.Errorf("%w: Interval must be positive", ErrInvalidConfig)
	}
	if c.QueryTimeout <= 0 {
		return fmt.Errorf("%w: QueryTimeout must be positive", ErrInvalidConfig)
	}
	return nil
}
