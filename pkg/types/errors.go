package types

import "errors"

// 公共错误定义
var (
	// ErrUnknownEventKind 未知的事件类型
	ErrUnknownEventKind = errors.New("types: unknown event kind")
)
