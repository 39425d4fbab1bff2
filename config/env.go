package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// 环境变量名（均带 EnvPrefix 前缀）
const (
	EnvPrefix = "SPLASH_"

	EnvNetworkName    = "NETWORK"
	EnvRootDomain     = "ROOT_DOMAIN"
	EnvKnownPeers     = "KNOWN_PEERS"
	EnvDNSServers     = "DNS_SERVERS"
	EnvListenAddrs    = "LISTEN_ADDRESSES"
	EnvDiscoveryEvery = "DISCOVERY_INTERVAL"
	EnvIdentityFile   = "IDENTITY_FILE"
	EnvAPIListen      = "LISTEN_OFFER_SUBMISSION"
	EnvAPIRateLimit   = "API_RATE_LIMIT"
	EnvOfferHook      = "OFFER_HOOK"
	EnvLogLevel       = "LOG_LEVEL"
	EnvLogFormat      = "LOG_FORMAT"
	EnvLogFile        = "LOG_FILE"
)

// LookupFunc 环境变量查询函数，签名与 os.LookupEnv 相同
type LookupFunc func(key string) (string, bool)

// LoadDotEnv 把 .env 文件中的变量载入进程环境
//
// 文件不存在时忽略；已存在的环境变量不会被覆盖。
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
	}
	return nil
}

// ApplyEnv 用环境变量覆盖配置
//
// 列表类变量以逗号分隔。无法解析的数值被忽略。
func ApplyEnv(cfg *Config, lookup LookupFunc) {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		v = strings.TrimSpace(v)
		return v, v != ""
	}

	if v, ok := get(EnvNetworkName); ok {
		cfg.Network.Name = v
	}
	if v, ok := get(EnvRootDomain); ok {
		cfg.Network.RootDomain = v
	}
	if v, ok := get(EnvKnownPeers); ok {
		cfg.Network.KnownPeers = SplitAndTrim(v, ",")
	}
	if v, ok := get(EnvDNSServers); ok {
		cfg.Network.DNSServers = SplitAndTrim(v, ",")
	}
	if v, ok := get(EnvListenAddrs); ok {
		cfg.Listen.Addrs = SplitAndTrim(v, ",")
	}
	if v, ok := get(EnvDiscoveryEvery); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Discovery.Interval = Duration(d)
		}
	}
	if v, ok := get(EnvIdentityFile); ok {
		cfg.Identity.KeyFile = v
	}
	if v, ok := get(EnvAPIListen); ok {
		cfg.API.ListenAddr = v
	}
	if v, ok := get(EnvAPIRateLimit); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.API.RateLimit = f
		}
	}
	if v, ok := get(EnvOfferHook); ok {
		cfg.Hook.URL = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.Log.Level = v
	}
	if v, ok := get(EnvLogFormat); ok {
		cfg.Log.Format = v
	}
	if v, ok := get(EnvLogFile); ok {
		cfg.Log.File = v
	}
}

// SplitAndTrim 分割字符串并去除空白项
func SplitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
