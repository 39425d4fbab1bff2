package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/internal/protocol/dissemination"
	"github.com/splash-p2p/go-splash/internal/protocol/offer"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("api")

// 提交失败时返回给客户端的错误文本
const (
	msgOfferTooLarge      = "Offer too large"
	msgInvalidOfferFormat = "Invalid offer format"
	msgQueueFull          = "Submission queue full"
	msgNodeClosed         = "Node closed"
	msgTooManyRequests    = "Too many requests"
)

// RequestIDHeader 请求 ID 头
const RequestIDHeader = "X-Request-ID"

// maxBodyOverhead 请求体中 offer 以外的 JSON 封装余量
const maxBodyOverhead = 4 * 1024

// ============================================================================
//                              配置
// ============================================================================

// Submitter offer 提交方
type Submitter interface {
	SubmitOffer(ctx context.Context, candidate string) error
}

// Config 服务配置
type Config struct {
	// Addr 监听地址（"host:port"）
	Addr string

	// RateLimit 每秒允许的提交次数，0 表示不限制
	RateLimit float64

	// RateBurst 提交突发上限
	RateBurst int

	// SubmitTimeout 提交队列满时的最长等待，0 表示只受请求 ctx 约束
	SubmitTimeout time.Duration

	// EnableEvents 启用 /events websocket
	EnableEvents bool
}

// ============================================================================
//                              Server
// ============================================================================

// Server offer 提交与观测 HTTP 服务
type Server struct {
	config    Config
	submitter Submitter
	counters  *metrics.Counters
	hub       *Hub
	limiter   *rate.Limiter

	server   *http.Server
	listener net.Listener

	running   bool
	startTime time.Time

	mu sync.Mutex
}

// New 创建服务
//
// counters 为 nil 时不注册指标端点；hub 为 nil 或未启用事件时不注册 /events。
func New(cfg Config, submitter Submitter, counters *metrics.Counters, hub *Hub) *Server {
	s := &Server{
		config:    cfg,
		submitter: submitter,
		counters:  counters,
		hub:       hub,
		startTime: time.Now(),
	}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return s
}

// Handler 返回完整路由
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/", s.limit(http.HandlerFunc(s.handleSubmit)))
	mux.Handle("/offer", s.limit(http.HandlerFunc(s.handleSubmit)))
	mux.HandleFunc("/health", s.handleHealth)

	if s.counters != nil {
		mux.HandleFunc("/metrics", s.handleMetrics)
		mux.Handle("/metrics/prometheus", promhttp.HandlerFor(
			metrics.NewRegistry(s.counters),
			promhttp.HandlerOpts{},
		))
	}

	if s.config.EnableEvents && s.hub != nil {
		mux.HandleFunc("/events", s.handleEvents)
	}

	return withRequestID(mux)
}

// Start 启动服务
func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP 服务异常退出", "error", err)
		}
	}()

	s.running = true
	s.startTime = time.Now()
	logger.Info("offer 提交服务已启动", "addr", listener.Addr().String())
	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("关闭 HTTP 服务失败", "error", err)
		return err
	}

	s.running = false
	logger.Info("offer 提交服务已停止")
	return nil
}

// Addr 返回实际监听地址
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr
}

// ============================================================================
//                              响应结构
// ============================================================================

// SubmitResponse 提交响应
type SubmitResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string       `json:"status"`
	Timestamp time.Time    `json:"timestamp"`
	Uptime    string       `json:"uptime,omitempty"`
	Runtime   *RuntimeInfo `json:"runtime,omitempty"`
}

// RuntimeInfo 运行时信息
type RuntimeInfo struct {
	GoVersion    string `json:"go_version"`
	NumGoroutine int    `json:"num_goroutine"`
	MemAlloc     uint64 `json:"mem_alloc"`
	NumGC        uint32 `json:"num_gc"`
}

// ============================================================================
//                              HTTP 处理器
// ============================================================================

// handleSubmit 处理 offer 提交
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rid := w.Header().Get(RequestIDHeader)

	r.Body = http.MaxBytesReader(w, r.Body, offer.MaxSize+maxBodyOverhead)
	var body offerBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeSubmit(w, http.StatusBadRequest, msgOfferTooLarge)
			return
		}
		s.writeSubmit(w, http.StatusBadRequest, msgInvalidOfferFormat)
		return
	}
	if body.Offer == nil {
		s.writeSubmit(w, http.StatusBadRequest, msgInvalidOfferFormat)
		return
	}

	ctx := r.Context()
	if s.config.SubmitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.SubmitTimeout)
		defer cancel()
	}

	err := s.submitter.SubmitOffer(ctx, *body.Offer)
	switch {
	case err == nil:
		logger.Debug("offer 已入队", "request_id", rid, "size", len(*body.Offer))
		s.writeSubmit(w, http.StatusOK, "")
	case errors.Is(err, offer.ErrOfferTooLarge):
		s.writeSubmit(w, http.StatusBadRequest, msgOfferTooLarge)
	case errors.Is(err, offer.ErrInvalidOfferFormat):
		s.writeSubmit(w, http.StatusBadRequest, msgInvalidOfferFormat)
	case errors.Is(err, dissemination.ErrClosed):
		s.writeSubmit(w, http.StatusServiceUnavailable, msgNodeClosed)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		logger.Warn("提交队列已满", "request_id", rid)
		s.writeSubmit(w, http.StatusServiceUnavailable, msgQueueFull)
	default:
		logger.Error("offer 提交失败", "request_id", rid, "error", err)
		s.writeSubmit(w, http.StatusInternalServerError, err.Error())
	}
}

// handleMetrics 返回计数器快照
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, s.counters.Snapshot())
}

// handleHealth 处理健康检查请求
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Uptime:    time.Since(s.startTime).String(),
		Runtime: &RuntimeInfo{
			GoVersion:    runtime.Version(),
			NumGoroutine: runtime.NumGoroutine(),
			MemAlloc:     memStats.Alloc,
			NumGC:        memStats.NumGC,
		},
	})
}

// ============================================================================
//                              中间件
// ============================================================================

// limit 提交限流
func (s *Server) limit(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			s.writeSubmit(w, http.StatusTooManyRequests, msgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withRequestID 为每个请求设置 X-Request-ID，沿用客户端提供的值
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rid := r.Header.Get(RequestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, rid)
		next.ServeHTTP(w, r)
	})
}

// ============================================================================
//                              辅助方法
// ============================================================================

func (s *Server) writeSubmit(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, SubmitResponse{Success: msg == "", Error: msg})
}

// writeJSON 写入 JSON 响应
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("JSON 编码失败", "error", err)
	}
}
