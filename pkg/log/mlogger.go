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

package log

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// MLogger 包装 zap.Logger，With 返回的仍是 *MLogger。
type MLogger struct {
	*zap.Logger
}

func (l *MLogger) With(fields ...zap.Field) *MLogger {
	return &MLogger{Logger: l.Logger.WithLazy(fields...)}
}

// Binder 可嵌入到组件中，为组件提供可替换的 Logger。
// 未绑定时使用全局 Logger。
type Binder struct {
	bound atomic.Pointer[MLogger]
}

// SetLogger 绑定 Logger，传入 nil 恢复为全局 Logger。
func (b *Binder) SetLogger(logger *MLogger) {
	b.bound.Store(logger)
}

func (b *Binder) Logger() *MLogger {
	if lg := b.bound.Load(); lg != nil {
		return lg
	}
	return &MLogger{Logger: L()}
}
