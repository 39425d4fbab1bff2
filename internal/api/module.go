package api

import (
	"context"

	"go.uber.org/fx"

	splash "github.com/splash-p2p/go-splash"
	"github.com/splash-p2p/go-splash/config"
	"github.com/splash-p2p/go-splash/internal/core/metrics"
)

// EventHandlerGroup 事件处理器的 fx 值组名
//
// 向该组提供 EventHandler 即可接收节点事件：
//
//	fx.Provide(fx.Annotate(newPrinter, fx.As(new(api.EventHandler)),
//	    fx.ResultTags(`group:"event_handlers"`)))
const EventHandlerGroup = "event_handlers"

// Module 返回 API Fx 模块
//
// 提供 *Hub、可选的 *Hook 与 *Server，并在启动时开始分发节点事件。
func Module() fx.Option {
	return fx.Module("api",
		fx.Provide(
			ProvideHub,
			ProvideHook,
			ProvideServer,
		),
		fx.Invoke(
			registerServer,
			registerDispatch,
		),
	)
}

// ProvideHub 提供事件 Hub
func ProvideHub() *Hub {
	return NewHub(DefaultSubscriberBuffer)
}

// ProvideHook 配置了回调地址时提供 *Hook，否则返回 nil
func ProvideHook(cfg *config.Config) *Hook {
	if cfg == nil || !cfg.Hook.Enabled() {
		return nil
	}
	logger.Info("启用 offer 回调", "url", cfg.Hook.URL)
	return NewHook(cfg.Hook.URL, cfg.Hook.Timeout.Duration())
}

// ServerParams 服务依赖参数
type ServerParams struct {
	fx.In

	Config   *config.Config
	Node     *splash.Node
	Counters *metrics.Counters
	Hub      *Hub
}

// ProvideServer 配置了监听地址时提供 *Server，否则返回 nil
func ProvideServer(params ServerParams) *Server {
	c := params.Config.API
	if !c.Enabled() {
		return nil
	}
	return New(Config{
		Addr:          c.ListenAddr,
		RateLimit:     c.RateLimit,
		RateBurst:     c.RateBurst,
		SubmitTimeout: c.SubmitTimeout.Duration(),
		EnableEvents:  c.EnableEvents,
	}, params.Node, params.Counters, params.Hub)
}

// registerServer 注册服务生命周期
func registerServer(lc fx.Lifecycle, server *Server) {
	if server == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start(ctx)
		},
		OnStop: func(_ context.Context) error {
			return server.Stop()
		},
	})
}

// dispatchParams 事件分发依赖参数
type dispatchParams struct {
	fx.In

	LC       fx.Lifecycle
	Node     *splash.Node
	Hub      *Hub
	Hook     *Hook          `optional:"true"`
	Handlers []EventHandler `group:"event_handlers"`
}

// registerDispatch 启动时开始消费节点事件，停止时等待分发退出
func registerDispatch(p dispatchParams) {
	handlers := append([]EventHandler{}, p.Handlers...)
	handlers = append(handlers, p.Hub)
	if p.Hook != nil {
		handlers = append(handlers, p.Hook)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)
				Dispatch(ctx, p.Node.Events(), handlers...)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
			p.Hub.Close()
			if p.Hook != nil {
				p.Hook.Close()
			}
			return nil
		},
	})
}
