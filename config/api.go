package config

import (
	"errors"
	"net"
	"net/url"
	"time"
)

// APIConfig HTTP 接口配置
type APIConfig struct {
	// ListenAddr offer 提交服务的监听地址（"host:port"），为空时不启动
	ListenAddr string `json:"listen_addr,omitempty"`

	// RateLimit 每秒允许的提交次数，0 表示不限制
	RateLimit float64 `json:"rate_limit"`

	// RateBurst 提交突发上限
	RateBurst int `json:"rate_burst"`

	// EnableEvents 启用 /events websocket 事件流
	EnableEvents bool `json:"enable_events"`

	// SubmitTimeout 提交队列满时的最长等待
	SubmitTimeout Duration `json:"submit_timeout"`
}

// DefaultAPIConfig 返回默认 API 配置
func DefaultAPIConfig() APIConfig {
	return APIConfig{
		RateLimit:     50,
		RateBurst:     100,
		EnableEvents:  true,
		SubmitTimeout: Duration(10 * time.Second),
	}
}

// Enabled 是否启动 HTTP 服务
func (c APIConfig) Enabled() bool {
	return c.ListenAddr != ""
}

// Validate 验证 API 配置
func (c APIConfig) Validate() error {
	if c.ListenAddr != "" {
		if _, _, err := net.SplitHostPort(c.ListenAddr); err != nil {
			return errors.New("listen_addr must be host:port")
		}
	}
	if c.RateLimit < 0 {
		return errors.New("rate_limit cannot be negative")
	}
	if c.RateLimit > 0 && c.RateBurst <= 0 {
		return errors.New("rate_burst must be positive when rate_limit is set")
	}
	if c.SubmitTimeout < 0 {
		return errors.New("submit_timeout cannot be negative")
	}
	return nil
}

// HookConfig offer 回调配置
type HookConfig struct {
	// URL 收到 offer 时 POST {"offer": "..."} 的地址，为空时不启用
	URL string `json:"url,omitempty"`

	// Timeout 单次回调超时
	Timeout Duration `json:"timeout"`
}

// DefaultHookConfig 返回默认回调配置
func DefaultHookConfig() HookConfig {
	return HookConfig{
		Timeout: Duration(10 * time.Second),
	}
}

// Enabled 是否启用回调
func (c HookConfig) Enabled() bool {
	return c.URL != ""
}

// Validate 验证回调配置
func (c HookConfig) Validate() error {
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return errors.New("url must be an absolute http(s) URL")
		}
	}
	if c.Timeout <= 0 {
		return errors.New("timeout must be positive")
	}
	return nil
}
