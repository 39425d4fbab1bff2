package api

import "errors"

var (
	// ErrHookStatus 回调地址返回非 2xx 状态码
	ErrHookStatus = errors.New("api: offer hook returned non-2xx status")

	// ErrHookBusy 进行中的回调过多，本次回调被丢弃
	ErrHookBusy = errors.New("api: too many in-flight offer hooks")
)
