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

package conc

import (
	"time"

	ants "github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lk2023060901/objectfactory-go/pkg/log"
)

// PoolOption 调整 Pool 的行为。
type PoolOption func(*poolOption)

type poolOption struct {
	nonBlocking  bool
	expiry       time.Duration
	concealPanic bool
	// preHandler 在每个任务执行前调用。
	preHandler func()
}

func defaultPoolOption() *poolOption {
	return &poolOption{}
}

// antsOptions 转换为 ants 的配置。任务 panic 时先记录日志，
// 除非设置了 concealPanic，否则继续向上抛出。
func (opt *poolOption) antsOptions() []ants.Option {
	antsOpt := ants.Options{
		Nonblocking:    opt.nonBlocking,
		ExpiryDuration: opt.expiry,
		PanicHandler: func(v any) {
			log.Error("task panicked in conc pool", zap.Any("panic", v))
			if !opt.concealPanic {
				panic(v)
			}
		},
	}
	return []ants.Option{ants.WithOptions(antsOpt)}
}

// WithNonBlocking 池满时 Submit 立即失败而不是等待。
func WithNonBlocking(v bool) PoolOption {
	return func(opt *poolOption) { opt.nonBlocking = v }
}

// WithExpiryDuration 设置空闲 worker 的回收间隔，0 使用 ants 的默认值。
func WithExpiryDuration(d time.Duration) PoolOption {
	return func(opt *poolOption) { opt.expiry = d }
}

func WithConcealPanic(v bool) PoolOption {
	return func(opt *poolOption) { opt.concealPanic = v }
}

func WithPreHandler(fn func()) PoolOption {
	return func(opt *poolOption) { opt.preHandler = fn }
}
