package host

import "errors"

var (
	// ErrInsufficientPeers 主题上没有可发送的对端
	ErrInsufficientPeers = errors.New("host: insufficient peers")

	// ErrClosed 网络已关闭
	ErrClosed = errors.New("host: closed")

	// ErrNilIdentity 未提供身份
	ErrNilIdentity = errors.New("host: nil identity")

	// ErrNoListenAddrs 没有成功绑定任何监听地址
	ErrNoListenAddrs = errors.New("host: failed to listen on any address")
)
