package app

import "errors"

var (
	// ErrNetworkClosed 网络事件流已关闭
	ErrNetworkClosed = errors.New("app: network event stream closed")

	// ErrAlreadyRunning Run 被重复调用
	ErrAlreadyRunning = errors.New("app: loop already running")
)
