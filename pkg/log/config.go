// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// 支持的日志格式。text 与 console 均使用 zap 的 console 编码器。
const (
	FormatJSON    = "json"
	FormatConsole = "console"
	FormatText    = "text"
)

const defaultLogMaxSize = 300 // MB

// FileLogConfig 为滚动文件日志配置，Filename 为空时不写文件。
type FileLogConfig struct {
	RootPath   string `mapstructure:"rootpath" json:"rootpath"`
	Filename   string `mapstructure:"filename" json:"filename"`
	MaxSize    int    `mapstructure:"max-size" json:"max-size"`       // MB
	MaxDays    int    `mapstructure:"max-days" json:"max-days"`       // 0 表示不按时间清理
	MaxBackups int    `mapstructure:"max-backups" json:"max-backups"` // 0 表示全部保留
}

// Config 为单个 Logger 的配置，全局日志与各模块日志共用。
type Config struct {
	Level  string        `mapstructure:"level" json:"level"`
	Format string        `mapstructure:"format" json:"format"`
	Stdout bool          `mapstructure:"stdout" json:"stdout"`
	File   FileLogConfig `mapstructure:"file" json:"file"`

	DisableTimestamp  bool `mapstructure:"disable-timestamp" json:"disable-timestamp"`
	DisableCaller     bool `mapstructure:"disable-caller" json:"disable-caller"`
	DisableStacktrace bool `mapstructure:"disable-stacktrace" json:"disable-stacktrace"`
	// Development 打开 zap 的开发模式，Warn 及以上级别附带堆栈。
	Development bool `mapstructure:"development" json:"development"`
	// Sampling 非空时按 zapcore.NewSamplerWithOptions 采样，窗口为一秒。
	Sampling *zap.SamplingConfig `mapstructure:"sampling" json:"sampling"`
}

// DefaultConfig 输出 info 级别的文本日志到标准输出。
func DefaultConfig() Config {
	return Config{Level: "info", Format: FormatText, Stdout: true}
}

// ZapProperties 记录 Logger 的底层组件，用于动态调整级别。
type ZapProperties struct {
	Core   zapcore.Core
	Syncer zapcore.WriteSyncer
	Level  zap.AtomicLevel
}

func newZapEncoder(cfg *Config) zapcore.Encoder {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.DisableTimestamp {
		encCfg.TimeKey = zapcore.OmitKey
	}
	if cfg.Format == FormatJSON {
		return zapcore.NewJSONEncoder(encCfg)
	}
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

func (cfg *Config) buildOptions(errSink zapcore.WriteSyncer) []zap.Option {
	opts := []zap.Option{zap.ErrorOutput(errSink)}
	stackLevel := zap.ErrorLevel
	if cfg.Development {
		opts = append(opts, zap.Development())
		stackLevel = zap.WarnLevel
	}
	if !cfg.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}
	if !cfg.DisableStacktrace {
		opts = append(opts, zap.AddStacktrace(stackLevel))
	}
	if s := cfg.Sampling; s != nil {
		opts = append(opts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewSamplerWithOptions(core, time.Second, s.Initial, s.Thereafter, zapcore.SamplerHook(s.Hook))
		}))
	}
	return opts
}
