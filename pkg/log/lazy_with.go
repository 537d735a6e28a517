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
	"sync"

	"go.uber.org/zap/zapcore"
)

// lazyWithCore 推迟 core.With(fields) 的调用，直到第一次真正写日志。
// 大量只创建不输出的子 Logger 因此不必为字段编码付出代价。
type lazyWithCore struct {
	base zapcore.Core
	core func() zapcore.Core
}

var _ zapcore.Core = (*lazyWithCore)(nil)

// NewLazyWith 返回在首次使用时才附加 fields 的 Core。
func NewLazyWith(core zapcore.Core, fields []zapcore.Field) zapcore.Core {
	return &lazyWithCore{
		base: core,
		core: sync.OnceValue(func() zapcore.Core {
			return core.With(fields)
		}),
	}
}

// Enabled 只读取级别，不触发字段附加。
func (l *lazyWithCore) Enabled(level zapcore.Level) bool {
	return l.base.Enabled(level)
}

func (l *lazyWithCore) With(fields []zapcore.Field) zapcore.Core {
	return l.core().With(fields)
}

func (l *lazyWithCore) Check(e zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	return l.core().Check(e, ce)
}

func (l *lazyWithCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	return l.core().Write(entry, fields)
}

func (l *lazyWithCore) Sync() error {
	return l.core().Sync()
}
