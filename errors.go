package splash

import (
	"errors"

	"github.com/splash-p2p/go-splash/internal/protocol/dissemination"
)

var (
	// ErrAlreadyBuilt Builder 已构建过节点
	ErrAlreadyBuilt = errors.New("splash: builder already built")

	// ErrNodeClosed 节点已关闭
	ErrNodeClosed = dissemination.ErrClosed

	// ErrNoBootstrapPeers 没有任何引导地址能加入路由表
	ErrNoBootstrapPeers = errors.New("splash: no usable bootstrap peers")

	// ErrNilConfig 配置为 nil
	ErrNilConfig = errors.New("splash: nil config")
)
