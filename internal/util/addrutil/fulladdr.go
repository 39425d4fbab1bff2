package addrutil

import (
	"errors"
	"fmt"

	"github.com/libp2p/go-libp2p/core/peer"
	ma "github.com/multiformats/go-multiaddr"
)

// ============================================================================
//                              错误定义
// ============================================================================

var (
	// ErrMissingPeerID 地址末尾缺少 /p2p/<PeerID>
	ErrMissingPeerID = errors.New("addrutil: address must end with /p2p/<peer-id>")

	// ErrEmptyAddress 空地址
	ErrEmptyAddress = errors.New("addrutil: empty address")
)

// ============================================================================
//                              完整地址解析
// ============================================================================

// SplitPeerAddr 拆分完整地址（含 /p2p/<PeerID>）
//
// 完整地址格式：
//
//	/ip4/1.2.3.4/tcp/4001/p2p/12D3KooW...
//
// 返回末尾的 PeerID 与去掉 /p2p 组件后的传输地址。
// 只有以 /p2p/<PeerID> 结尾的地址才能进入路由表。
func SplitPeerAddr(addr ma.Multiaddr) (peer.ID, ma.Multiaddr, error) {
	if addr == nil {
		return "", nil, ErrEmptyAddress
	}

	transport, last := ma.SplitLast(addr)
	if last == nil || last.Protocol().Code != ma.P_P2P {
		return "", nil, fmt.Errorf("%w: %s", ErrMissingPeerID, addr)
	}

	id, err := peer.IDFromBytes(last.RawValue())
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s: %v", ErrMissingPeerID, addr, err)
	}
	return id, transport, nil
}

// ParsePeerAddrs 解析字符串形式的完整地址列表
//
// 任一地址无效即返回错误，错误中包含出错的原始字符串。
func ParsePeerAddrs(raw []string) ([]ma.Multiaddr, error) {
	out := make([]ma.Multiaddr, 0, len(raw))
	for _, s := range raw {
		m, err := ma.NewMultiaddr(s)
		if err != nil {
			return nil, fmt.Errorf("addrutil: invalid multiaddr %q: %w", s, err)
		}
		if _, _, err := SplitPeerAddr(m); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// ParseAddrs 解析字符串形式的地址列表（不要求 /p2p 组件）
func ParseAddrs(raw []string) ([]ma.Multiaddr, error) {
	out := make([]ma.Multiaddr, 0, len(raw))
	for _, s := range raw {
		m, err := ma.NewMultiaddr(s)
		if err != nil {
			return nil, fmt.Errorf("addrutil: invalid multiaddr %q: %w", s, err)
		}
		out = append(out, m)
	}
	return out, nil
}
