// Package main 提供 splash 命令行入口
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	splash "github.com/splash-p2p/go-splash"
	"github.com/splash-p2p/go-splash/config"
	"github.com/splash-p2p/go-splash/internal/api"
	"github.com/splash-p2p/go-splash/internal/core/metrics"
	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

var logger = log.Logger("cmd/splash")

// 启停超时
const (
	startTimeout = 2 * time.Minute
	stopTimeout  = 15 * time.Second
)

// errNodeStopped 节点在收到退出信号之前停止
var errNodeStopped = errors.New("node stopped")

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	if opts.showVersion {
		fmt.Println(splash.VersionInfo())
		return nil
	}

	if err := loadEnvFile(opts); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	cfg, err := buildConfig(opts, lookupEnv)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logClose, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer logClose()

	logger.Info("启动 splash 节点", "version", splash.Version, "commit", splash.GitCommit, "buildDate", splash.BuildDate)
	if len(cfg.Network.KnownPeers) == 0 {
		fmt.Println("No known peers, bootstrapping from dexies dns introducer")
	}

	var node *splash.Node
	app := fx.New(
		fx.Supply(cfg),
		splash.Module(),
		api.Module(),
		fx.Provide(fx.Annotate(
			func() api.EventHandler { return newPrinter(os.Stdout, os.Stderr) },
			fx.ResultTags(`group:"event_handlers"`),
		)),
		fx.Populate(&node),
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)
	if err := app.Err(); err != nil {
		return fmt.Errorf("start node: %w", err)
	}

	startCtx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return fmt.Errorf("start node: %w", err)
	}

	runErr := wait(node, cfg.Log.MetricsInterval.Duration())

	stopCtx, stopCancel := context.WithTimeout(context.Background(), stopTimeout)
	defer stopCancel()
	stopErr := app.Stop(stopCtx)

	if runErr != nil {
		return runErr
	}
	return stopErr
}

// wait 等待退出信号或节点停止，期间周期输出指标
func wait(node *splash.Node, metricsInterval time.Duration) error {
	sigCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		metrics.Report(ctx, node.Counters(), metricsInterval)
		return nil
	})
	g.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-node.Done():
			if err := node.Err(); err != nil {
				return err
			}
			return errNodeStopped
		}
	})

	err := g.Wait()
	if sigCtx.Err() != nil {
		logger.Info("收到退出信号，正在关闭节点")
	}
	return err
}

// setupLogging 设置日志输出，返回关闭日志文件的函数
func setupLogging(c config.LogConfig) (func(), error) {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	format := log.Format(c.Format)

	if c.File == "" {
		log.Setup(os.Stderr, level, format)
		return func() {}, nil
	}

	if err := os.MkdirAll(filepath.Dir(c.File), 0750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	file, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.Setup(file, level, format)
	return func() { _ = file.Close() }, nil
}
