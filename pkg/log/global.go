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
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func Debug(msg string, fields ...zap.Field) { L().Debug(msg, fields...) }

func Info(msg string, fields ...zap.Field) { L().Info(msg, fields...) }

func Warn(msg string, fields ...zap.Field) { L().Warn(msg, fields...) }

func Error(msg string, fields ...zap.Field) { L().Error(msg, fields...) }

// With 返回附带 fields 的全局 Logger，字段在首次输出时才会编码。
func With(fields ...zap.Field) *MLogger {
	return &MLogger{Logger: L().WithLazy(fields...)}
}

func SetLevel(l zapcore.Level) {
	Level().SetLevel(l)
}

func GetLevel() zapcore.Level {
	return Level().Level()
}

type ctxLoggerKey struct{}

// Ctx 返回 ctx 中绑定的 Logger，没有时返回全局 Logger。
func Ctx(ctx context.Context) *MLogger {
	if ctx != nil {
		if lg, ok := ctx.Value(ctxLoggerKey{}).(*MLogger); ok {
			return lg
		}
	}
	return &MLogger{Logger: L()}
}

// WithFields 在 ctx 已绑定的 Logger 上追加字段。
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return context.WithValue(ctx, ctxLoggerKey{}, &MLogger{Logger: Ctx(ctx).Logger.With(fields...)})
}

func WithModule(ctx context.Context, module string) context.Context {
	return WithFields(ctx, FieldModule(module))
}

// NewIntentContext 开启名为 intent 的 span，并把 role、intent 与 traceID
// 绑定到返回的 ctx 的 Logger 上。
func NewIntentContext(ctx context.Context, name string, intent string) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(name).Start(ctx, intent)
	return WithFields(ctx,
		zap.String("role", name),
		zap.String("intent", intent),
		zap.String("traceID", span.SpanContext().TraceID().String()),
	), span
}
