package config

import (
	"errors"
	"time"

	"github.com/splash-p2p/go-splash/pkg/lib/log"
)

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别：debug / info / warn / error
	Level string `json:"level"`

	// Format 输出格式：text / json
	Format string `json:"format"`

	// File 日志文件，为空时输出到 stderr
	File string `json:"file,omitempty"`

	// MetricsInterval 指标快照日志周期，0 表示不输出
	MetricsInterval Duration `json:"metrics_interval"`
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:           "info",
		Format:          string(log.FormatText),
		MetricsInterval: Duration(time.Minute),
	}
}

// Validate 验证日志配置
func (c LogConfig) Validate() error {
	if _, err := log.ParseLevel(c.Level); err != nil {
		return err
	}
	switch log.Format(c.Format) {
	case log.FormatText, log.FormatJSON, "":
	default:
		return errors.New("format must be text or json")
	}
	if c.MetricsInterval < 0 {
		return errors.New("metrics_interval cannot be negative")
	}
	return nil
}
