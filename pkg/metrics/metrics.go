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
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// serdeNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	serdeNamespace = "serde"

	codecSubsystem   = "codec"
	convertSubsystem = "convert"

	// 以下为当前使用的通用标签名。
	formatLabelName = "format"
	opLabelName     = "op"
	resultLabelName = "result"

	// ResultOK 为操作成功时 result 标签的取值，失败时取错误类别名。
	ResultOK = "ok"
)

var (
	// buckets 为耗时直方图的桶划分，单位为毫秒。
	// 实际桶分布为：
	// [1 2 4 8 16 32 64 128 256 512 1024 2048 4096 8192 16384 32768 65536 1.31072e+05]
	buckets = prometheus.ExponentialBuckets(1, 2, 18)

	// sizeBuckets 为文件大小的桶划分，单位为字节。
	sizeBuckets = []float64{64, 1024, 16384, 262144, 1048576, 16777216, 67108864, 268435456, 1073741824} // 单位：字节

	CodecOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serdeNamespace,
			Subsystem: codecSubsystem,
			Name:      "operations_total",
			Help:      "编解码操作次数，按格式、操作与结果划分",
		}, []string{formatLabelName, opLabelName, resultLabelName})

	CodecOperationBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: serdeNamespace,
			Subsystem: codecSubsystem,
			Name:      "operation_bytes",
			Help:      "成功的编解码操作读写的文件字节数",
			Buckets:   sizeBuckets,
		}, []string{formatLabelName, opLabelName})

	CodecOperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: serdeNamespace,
			Subsystem: codecSubsystem,
			Name:      "operation_latency_ms",
			Help:      "编解码操作耗时",
			Buckets:   buckets,
		}, []string{formatLabelName, opLabelName})

	ConvertPendingTasks = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: serdeNamespace,
			Subsystem: convertSubsystem,
			Name:      "pending_tasks",
			Help:      "批量格式转换中尚未完成的任务数",
		})

	metricRegisterer prometheus.Registerer
	registerMu       sync.Mutex
)

// GetRegisterer 返回全局 Prometheus Registerer。
// 如果尚未通过 Register 显式设置，则返回 prometheus.DefaultRegisterer。
func GetRegisterer() prometheus.Registerer {
	registerMu.Lock()
	defer registerMu.Unlock()
	if metricRegisterer == nil {
		return prometheus.DefaultRegisterer
	}
	return metricRegisterer
}

// Register 将当前定义的所有指标注册到 r。
// 同一个 Registerer 重复注册会被忽略。
func Register(r prometheus.Registerer) {
	registerMu.Lock()
	defer registerMu.Unlock()
	for _, c := range []prometheus.Collector{
		CodecOperations,
		CodecOperationBytes,
		CodecOperationLatency,
		ConvertPendingTasks,
	} {
		if err := r.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}
	metricRegisterer = r
}
