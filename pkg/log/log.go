// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

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
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"gopkg.in/natefinch/lumberjack.v2"
)

// globals 为进程级 Logger 及其属性，整体原子替换。
type globals struct {
	logger *zap.Logger
	sugar  *zap.SugaredLogger
	props  *ZapProperties
}

var current atomic.Pointer[globals]

func init() {
	cfg := &Config{Level: "info", Format: FormatText, Stdout: true, DisableStacktrace: true}
	lg, props, err := InitLogger(cfg, zap.OnFatal(zapcore.WriteThenPanic))
	if err != nil {
		panic(err)
	}
	ReplaceGlobals(lg, props)
}

// InitLogger 按配置创建 Logger。文件与标准输出可以同时启用，
// 级别 trace 视同 debug。
func InitLogger(cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	sinks, err := openSinks(cfg)
	if err != nil {
		return nil, nil, err
	}
	normalized := *cfg
	if strings.EqualFold(normalized.Level, "trace") {
		normalized.Level = "debug"
	}
	return InitLoggerWithWriteSyncer(&normalized, zap.CombineWriteSyncers(sinks...), opts...)
}

// InitTestLogger 创建输出到 t.Log 的 Logger，zap 内部错误会使测试失败。
func InitTestLogger(t zaptest.TestingT, cfg *Config, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	writer := zaptest.NewTestingWriter(t)
	opts = append([]zap.Option{zap.ErrorOutput(writer.WithMarkFailed(true))}, opts...)
	return InitLoggerWithWriteSyncer(cfg, writer, opts...)
}

// InitLoggerWithWriteSyncer 使用给定的 output 创建 Logger。
func InitLoggerWithWriteSyncer(cfg *Config, output zapcore.WriteSyncer, opts ...zap.Option) (*zap.Logger, *ZapProperties, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
		}
	}
	props := &ZapProperties{
		Core:   zapcore.NewCore(newZapEncoder(cfg), output, level),
		Syncer: output,
		Level:  level,
	}
	lg := zap.New(props.Core, append(cfg.buildOptions(output), opts...)...)
	return lg, props, nil
}

func openSinks(cfg *Config) ([]zapcore.WriteSyncer, error) {
	var sinks []zapcore.WriteSyncer
	if cfg.File.Filename != "" {
		rotated, err := newRotatingFile(&cfg.File)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, zapcore.AddSync(rotated))
	}
	if cfg.Stdout {
		stdout, _, err := zap.Open("stdout")
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, stdout)
	}
	return sinks, nil
}

// newRotatingFile 返回按大小滚动的日志文件，MaxSize 为 0 时回填默认值。
func newRotatingFile(cfg *FileLogConfig) (*lumberjack.Logger, error) {
	path := filepath.Join(cfg.RootPath, cfg.Filename)
	if st, err := os.Stat(path); err == nil && st.IsDir() {
		return nil, errors.Newf("log file %q is a directory", path)
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}

// L 返回全局 Logger，可并发使用。
func L() *zap.Logger {
	return current.Load().logger
}

// S 返回全局 SugaredLogger。
func S() *zap.SugaredLogger {
	return current.Load().sugar
}

// ReplaceGlobals 原子地替换全局 Logger 及其属性。
func ReplaceGlobals(logger *zap.Logger, props *ZapProperties) {
	current.Store(&globals{logger: logger, sugar: logger.Sugar(), props: props})
}

// Setup 按配置初始化日志并替换全局 Logger。
func Setup(cfg *Config) error {
	lg, props, err := InitLogger(cfg)
	if err != nil {
		return err
	}
	ReplaceGlobals(lg, props)
	return nil
}

// Sync 刷新全局 Logger 的缓冲。
func Sync() error {
	return L().Sync()
}

// Level 返回全局 Logger 的动态级别。
func Level() zap.AtomicLevel {
	return current.Load().props.Level
}
