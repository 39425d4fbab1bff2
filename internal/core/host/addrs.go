package host

import (
	"sync"

	ma "github.com/multiformats/go-multiaddr"
	manet "github.com/multiformats/go-multiaddr/net"
)

// externalAddrs 外部地址集合
//
// identify 报告的观察地址未经验证，集合满时淘汰最早记录的地址。
type externalAddrs struct {
	mu    sync.RWMutex
	max   int
	addrs []ma.Multiaddr
}

func newExternalAddrs(max int) *externalAddrs {
	return &externalAddrs{max: max}
}

// add 记录外部地址，已存在时返回 false
func (e *externalAddrs) add(addr ma.Multiaddr) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, a := range e.addrs {
		if a.Equal(addr) {
			return false
		}
	}
	if e.max > 0 && len(e.addrs) >= e.max {
		e.addrs = e.addrs[1:]
	}
	e.addrs = append(e.addrs, addr)
	return true
}

func (e *externalAddrs) list() []ma.Multiaddr {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]ma.Multiaddr, len(e.addrs))
	copy(out, e.addrs)
	return out
}

// factory 作为 libp2p AddrsFactory：主机地址加上外部地址
func (e *externalAddrs) factory(addrs []ma.Multiaddr) []ma.Multiaddr {
	return mergeAddrs(addrs, e.list())
}

// mergeAddrs 合并地址列表并去重，保持顺序
func mergeAddrs(lists ...[]ma.Multiaddr) []ma.Multiaddr {
	seen := make(map[string]struct{})
	var out []ma.Multiaddr
	for _, list := range lists {
		for _, a := range list {
			key := string(a.Bytes())
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}

// expandListenAddr 把任意地址展开为各网卡地址
//
// 非任意地址原样返回；网卡枚举失败时也原样返回。
func expandListenAddr(addr ma.Multiaddr) []ma.Multiaddr {
	ifaceAddrs, err := manet.InterfaceMultiaddrs()
	if err != nil {
		logger.Debug("枚举网卡地址失败", "error", err)
		return []ma.Multiaddr{addr}
	}
	return expandWith(addr, ifaceAddrs)
}

func expandWith(addr ma.Multiaddr, ifaceAddrs []ma.Multiaddr) []ma.Multiaddr {
	resolved, err := manet.ResolveUnspecifiedAddress(addr, ifaceAddrs)
	if err != nil || len(resolved) == 0 {
		return []ma.Multiaddr{addr}
	}
	return resolved
}
