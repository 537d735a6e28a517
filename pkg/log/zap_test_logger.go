// Copyright 2021 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
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
	"bytes"

	"go.uber.org/zap/zaptest"
)

// testingWriter 把日志逐行转发给 t.Logf，编解码器的测试输出因此跟随所属用例。
type testingWriter struct {
	t zaptest.TestingT
	// failOnWrite 为 true 时每次写入都会将用例标记为失败，用于 zap 内部错误输出。
	failOnWrite bool
}

func newTestingWriter(t zaptest.TestingT, failOnWrite bool) testingWriter {
	return testingWriter{t: t, failOnWrite: failOnWrite}
}

func (w testingWriter) Write(p []byte) (int, error) {
	for _, line := range bytes.Split(bytes.TrimRight(p, "\n"), []byte{'\n'}) {
		w.t.Logf("%s", line)
	}
	if w.failOnWrite {
		w.t.Fail()
	}
	return len(p), nil
}

func (testingWriter) Sync() error {
	return nil
}
