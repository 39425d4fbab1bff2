package coordinator

import "errors"

var (
	// ErrInvalidConfig 配置无效
	ErrInvalidConfig = errors.New("coordinator: invalid config")

	// ErrNilRoutingTable 未提供路由表
	ErrNilRoutingTable = errors.New("coordinator: nil routing table")
)
