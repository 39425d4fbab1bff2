package offer

import "errors"

// 校验错误
var (
	// ErrOfferTooLarge offer 超过 MaxSize
	ErrOfferTooLarge = errors.New("offer: too large")

	// ErrInvalidOfferFormat offer 不是合法的 bech32 文本
	ErrInvalidOfferFormat = errors.New("offer: invalid format")
)
