package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/splash-p2p/go-splash/config"
)

// ============================================================================
//                              命令行参数
// ============================================================================

// stringList 可重复的字符串参数
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// options 命令行参数
type options struct {
	knownPeers            stringList
	listenAddresses       stringList
	identityFile          string
	offerHook             string
	listenOfferSubmission string
	configFile            string
	envFile               string
	logLevel              string
	logFile               string
	showVersion           bool

	// set 显式指定过的参数名
	set map[string]bool
}

// parseFlags 解析命令行参数
func parseFlags(args []string, output io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("splash", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.Var(&opts.knownPeers, "known-peer", "Set initial peer (MULTIADDR), if missing use dexies DNS introducer; repeatable")
	fs.Var(&opts.listenAddresses, "listen-address", "Set listen address (MULTIADDR), defaults to all interfaces; repeatable")
	fs.StringVar(&opts.identityFile, "identity-file", "", "Store and reuse peer identity (only useful for known peers)")
	fs.StringVar(&opts.offerHook, "offer-hook", "", "HTTP endpoint where incoming offers are posted to, sends JSON body {\"offer\":\"offer1...\"} (defaults to STDOUT)")
	fs.StringVar(&opts.listenOfferSubmission, "listen-offer-submission", "", "Start a HTTP API for offer submission (HOST:PORT), expects JSON body {\"offer\":\"offer1...\"}")
	fs.StringVar(&opts.configFile, "config", "", "JSON config file")
	fs.StringVar(&opts.envFile, "env-file", ".env", "Load SPLASH_* variables from this file if it exists")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (debug/info/warn/error)")
	fs.StringVar(&opts.logFile, "log", "", "Log file, defaults to stderr")
	fs.BoolVar(&opts.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fs.Arg(0))
	}
	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// isFlagSet 检查参数是否被显式设置
func (o *options) isFlagSet(name string) bool {
	return o.set[name]
}

// ============================================================================
//                              配置合并
// ============================================================================

// buildConfig 合并配置
//
// 配置优先级（从高到低）：
//  1. 命令行参数
//  2. 环境变量（SPLASH_* 前缀，可来自 .env 文件）
//  3. 配置文件
//  4. 默认值
func buildConfig(opts *options, lookup config.LookupFunc) (*config.Config, error) {
	cfg := config.NewConfig()
	if opts.configFile != "" {
		var err error
		cfg, err = config.LoadFile(opts.configFile)
		if err != nil {
			return nil, err
		}
	}

	config.ApplyEnv(cfg, lookup)

	if opts.isFlagSet("known-peer") {
		cfg.Network.KnownPeers = opts.knownPeers
	}
	if opts.isFlagSet("listen-address") {
		cfg.Listen.Addrs = opts.listenAddresses
	}
	if opts.isFlagSet("identity-file") {
		cfg.Identity.KeyFile = opts.identityFile
	}
	if opts.isFlagSet("offer-hook") {
		cfg.Hook.URL = opts.offerHook
	}
	if opts.isFlagSet("listen-offer-submission") {
		cfg.API.ListenAddr = opts.listenOfferSubmission
	}
	if opts.isFlagSet("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if opts.isFlagSet("log") {
		cfg.Log.File = opts.logFile
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadEnvFile 加载 .env 文件（不存在时忽略）
func loadEnvFile(opts *options) error {
	if opts.envFile == "" {
		return nil
	}
	return config.LoadDotEnv(opts.envFile)
}

// lookupEnv 进程环境变量查询
func lookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
