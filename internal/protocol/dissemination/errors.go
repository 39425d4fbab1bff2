package dissemination

import "errors"

var (
	// ErrClosed Gate 已关闭
	ErrClosed = errors.New("dissemination: closed")
)
