package offer

import (
	"bytes"

	"github.com/btcsuite/btcd/btcutil/bech32"
)

const (
	// MaxSize offer 最大字节数（300 KiB）
	MaxSize = 300 * 1024

	// Tag 入站载荷的前缀标记
	//
	// 同一主题上以其他前缀开头的载荷视为无关流量。
	Tag = "offer1"
)

// Validate 校验候选 offer
//
// 超过 MaxSize 返回 ErrOfferTooLarge；无法按 bech32 解码返回 ErrInvalidOfferFormat；
// 否则返回用于发送的原始字节。无副作用。
func Validate(candidate string) ([]byte, error) {
	if len(candidate) > MaxSize {
		return nil, ErrOfferTooLarge
	}
	if _, _, err := bech32.DecodeNoLimit(candidate); err != nil {
		return nil, ErrInvalidOfferFormat
	}
	return []byte(candidate), nil
}

// HasTag 判断载荷是否以 offer 前缀开头
func HasTag(payload []byte) bool {
	return bytes.HasPrefix(payload, []byte(Tag))
}
