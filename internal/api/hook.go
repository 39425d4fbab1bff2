package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/splash-p2p/go-splash/pkg/types"
)

// DefaultHookConcurrency 同时进行的回调上限
const DefaultHookConcurrency = 16

// offerBody 回调与提交共用的请求体
type offerBody struct {
	Offer *string `json:"offer"`
}

// ============================================================================
//                              Hook
// ============================================================================

// Hook 把收到的 offer POST 到外部 HTTP 地址
//
// 请求体为 {"offer":"offer1..."}。回调异步进行，失败只记录日志。
type Hook struct {
	url     string
	timeout time.Duration
	client  *http.Client
	sem     *semaphore.Weighted

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewHook 创建回调
func NewHook(url string, timeout time.Duration) *Hook {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hook{
		url:     url,
		timeout: timeout,
		client:  &http.Client{},
		sem:     semaphore.NewWeighted(DefaultHookConcurrency),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// HandleEvent 实现 EventHandler，只处理 OfferReceived
func (h *Hook) HandleEvent(ev types.NodeEvent) {
	e, ok := ev.(types.OfferReceived)
	if !ok {
		return
	}
	if !h.sem.TryAcquire(1) {
		logger.Warn("offer 回调被丢弃", "error", ErrHookBusy)
		return
	}

	offer := string(e.Offer)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer h.sem.Release(1)
		if err := h.Post(h.ctx, offer); err != nil {
			logger.Warn("offer 回调失败", "url", h.url, "error", err)
		}
	}()
}

// Post 同步发送一次回调
func (h *Hook) Post(ctx context.Context, offer string) error {
	body, err := json.Marshal(offerBody{Offer: &offer})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d", ErrHookStatus, resp.StatusCode)
	}
	return nil
}

// Close 取消进行中的回调并等待退出
func (h *Hook) Close() {
	h.cancel()
	h.wg.Wait()
}
