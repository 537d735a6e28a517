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

// Future 表示一个异步任务的结果。
type Future[T any] struct {
	ch    chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		ch: make(chan struct{}),
	}
}

// Await 阻塞直到任务完成，返回结果和错误。
func (future *Future[T]) Await() (T, error) {
	<-future.ch
	return future.value, future.err
}

// Value 阻塞直到任务完成并返回结果。
func (future *Future[T]) Value() T {
	<-future.ch
	return future.value
}

// Err 阻塞直到任务完成并返回错误。
func (future *Future[T]) Err() error {
	<-future.ch
	return future.err
}

// OK 阻塞直到任务完成，成功时返回 true。
func (future *Future[T]) OK() bool {
	<-future.ch
	return future.err == nil
}

// Inner 返回任务完成时关闭的 channel。
func (future *Future[T]) Inner() <-chan struct{} {
	return future.ch
}

// AwaitAll 等待全部 Future 完成，返回每个任务的错误（成功为 nil），顺序与入参一致。
func AwaitAll[T any](futures ...*Future[T]) []error {
	errs := make([]error, len(futures))
	for i, future := range futures {
		errs[i] = future.Err()
	}
	return errs
}
