// Package codecutil 汇集各编解码器共用的收尾逻辑：记录指标并输出日志。
package codecutil

import (
	"time"

	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

// Op 描述一次正在进行的编解码操作。
type Op struct {
	logger *log.MLogger
	format string
	op     string
	path   string
	start  time.Time
}

// Begin 开始记录一次操作。
func Begin(logger *log.MLogger, format, op, path string) *Op {
	return &Op{
		logger: logger,
		format: format,
		op:     op,
		path:   path,
		start:  time.Now(),
	}
}

// Done 结束操作：成功时以 Debug 级别记录字节数与耗时，失败时以 Warn 级别记录错误类别。
// 返回值即 err，便于在 return 语句中直接使用。
func (o *Op) Done(n int, err error) error {
	fields := []zap.Field{
		log.FieldFormat(o.format),
		zap.String("op", o.op),
		log.FieldPath(o.path),
		zap.Duration("duration", time.Since(o.start)),
	}
	if err != nil {
		kind := merr.Kind(err)
		metrics.ObserveCodec(o.format, o.op, kind, 0, o.start)
		o.logger.Warn("codec operation failed", append(fields, zap.String("kind", kind), log.FieldError(err))...)
		return err
	}
	metrics.ObserveCodec(o.format, o.op, metrics.ResultOK, n, o.start)
	o.logger.Debug("codec operation done", append(fields, zap.Int("bytes", n))...)
	return nil
}
