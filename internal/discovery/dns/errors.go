package dns

import (
	"errors"
	"fmt"
)

// 预定义错误
var (
	// ErrNoPeersFound 引导域名下没有可用的节点地址
	ErrNoPeersFound = errors.New("dns: no peers found")

	// ErrMissingTransport 引导地址只有 /p2p 部分，没有可拨号的传输地址
	ErrMissingTransport = errors.New("dns: bootstrap address has no transport part")

	// ErrNoServers 没有可用的 DNS 服务器
	ErrNoServers = errors.New("dns: no nameservers configured")
)

// ResolutionError DNS 查询本身失败（网络错误、服务器错误等）
type ResolutionError struct {
	Domain string
	Err    error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("dns: resolve %s: %v", e.Domain, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
