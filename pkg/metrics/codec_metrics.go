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

package metrics

import (
	"time"
)

// 编解码操作名。
const (
	OpEncode = "encode"
	OpDecode = "decode"
)

// ObserveCodec 记录一次编解码操作。
// result 为 ResultOK 或错误类别名；bytes 仅在成功时计入直方图。
func ObserveCodec(format, op, result string, bytes int, start time.Time) {
	CodecOperations.WithLabelValues(format, op, result).Inc()
	CodecOperationLatency.WithLabelValues(format, op).Observe(float64(time.Since(start).Milliseconds()))
	if result == ResultOK {
		CodecOperationBytes.WithLabelValues(format, op).Observe(float64(bytes))
	}
}
