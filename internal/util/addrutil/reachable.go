// Package addrutil 提供地址分类与完整地址解析工具
package addrutil

import (
	"net/netip"

	ma "github.com/multiformats/go-multiaddr"
)

// ============================================================================
//                              可达性判断
// ============================================================================

// IsGloballyReachable 判断对端通告的地址是否全局可达
//
// 只要任意一个组件满足以下条件即判定为不可达：
//   - ip4 回环地址（127.0.0.0/8）
//   - ip4 私网地址（10.0.0.0/8、172.16.0.0/12、192.168.0.0/16）
//   - ip6 回环地址（::1）
//
// 其他组件（tcp、p2p、dns 等）不影响判断。0.0.0.0 与公网 IPv6 视为可达。
// 纯函数，对 nil 地址返回 true。
func IsGloballyReachable(addr ma.Multiaddr) bool {
	if addr == nil {
		return true
	}

	reachable := true
	ma.ForEach(addr, func(c ma.Component) bool {
		if isNonGlobal(c) {
			reachable = false
			return false
		}
		return true
	})
	return reachable
}

func isNonGlobal(c ma.Component) bool {
	switch c.Protocol().Code {
	case ma.P_IP4:
		ip, ok := netip.AddrFromSlice(c.RawValue())
		if !ok {
			return false
		}
		ip = ip.Unmap()
		return ip.IsLoopback() || ip.IsPrivate()
	case ma.P_IP6:
		ip, ok := netip.AddrFromSlice(c.RawValue())
		if !ok {
			return false
		}
		// 只有 ::1 算回环，IPv4 映射地址不参与判断
		return ip == netip.IPv6Loopback()
	default:
		return false
	}
}
