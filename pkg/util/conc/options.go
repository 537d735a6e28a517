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

	"github.com/lk2023060901/danmu-serde-go/pkg/log"
)

// poolOption 为 Pool 的可调参数，零值即 ants 的默认行为。
type poolOption struct {
	// 池满时 Submit 立即失败而不是等待空闲 worker。
	nonBlocking bool
	// 空闲 worker 的回收间隔，0 表示使用 ants 默认值。
	expiry time.Duration
	// 任务 panic 只记录日志并让 Future 返回错误，不再向上抛出。
	concealPanic bool
}

func (opt *poolOption) antsOptions() []ants.Option {
	result := []ants.Option{
		ants.WithNonblocking(opt.nonBlocking),
		ants.WithPanicHandler(opt.onPanic),
	}
	if opt.expiry > 0 {
		result = append(result, ants.WithExpiryDuration(opt.expiry))
	}
	return result
}

func (opt *poolOption) onPanic(v any) {
	log.Error("conc pool task panicked", zap.Any("panic", v))
	if !opt.concealPanic {
		panic(v)
	}
}

// PoolOption 配置 NewPool 创建的协程池。
type PoolOption func(opt *poolOption)

// WithNonBlocking 设置池满时是否直接拒绝任务，被拒绝的任务其 Future 返回 ants.ErrPoolOverload。
func WithNonBlocking(v bool) PoolOption {
	return func(opt *poolOption) {
		opt.nonBlocking = v
	}
}

func WithExpiryDuration(d time.Duration) PoolOption {
	return func(opt *poolOption) {
		opt.expiry = d
	}
}

// WithConcealPanic 设置是否吞掉任务中的 panic。
func WithConcealPanic(v bool) PoolOption {
	return func(opt *poolOption) {
		opt.concealPanic = v
	}
}
