package config

import "errors"

var (
	// ErrNilConfig 配置为 nil
	ErrNilConfig = errors.New("config: nil config")

	// ErrInvalidMultiaddr 地址无法解析
	ErrInvalidMultiaddr = errors.New("invalid multiaddr")
)
