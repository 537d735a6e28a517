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
	"github.com/cockroachdb/errors"
	ants "github.com/panjf2000/ants/v2"
)

// Pool 是 ants.Pool 的泛型封装，提交的任务以 Future 返回结果。
type Pool[T any] struct {
	inner *ants.Pool
}

// NewPool 创建容量为 cap 的协程池。
func NewPool[T any](cap int, opts ...PoolOption) *Pool[T] {
	opt := &poolOption{}
	for _, o := range opts {
		o(opt)
	}

	pool, err := ants.NewPool(cap, opt.antsOptions()...)
	if err != nil {
		panic(err)
	}

	return &Pool[T]{
		inner: pool,
	}
}

// Submit 提交一个任务，返回可等待其结果的 Future。
// 非阻塞模式下池已满时，Future 立即以错误完成。
func (pool *Pool[T]) Submit(method func() (T, error)) *Future[T] {
	future := newFuture[T]()
	err := pool.inner.Submit(func() {
		defer close(future.ch)
		defer func() {
			if x := recover(); x != nil {
				future.err = errors.Newf("panicked with error: %v", x)
				panic(x) // 交给 ants 的 panic handler 处理
			}
		}()
		res, err := method()
		if err != nil {
			future.err = err
		} else {
			future.value = res
		}
	})
	if err != nil {
		future.err = err
		close(future.ch)
	}

	return future
}

// Cap 返回协程池容量。
func (pool *Pool[T]) Cap() int {
	return pool.inner.Cap()
}

// Running 返回正在运行的 worker 数。
func (pool *Pool[T]) Running() int {
	return pool.inner.Running()
}

// Release 释放协程池，未完成的任务会继续执行。
func (pool *Pool[T]) Release() {
	pool.inner.Release()
}
