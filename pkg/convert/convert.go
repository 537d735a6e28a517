// Package convert 在值模型的各文本格式之间转换文件。
package convert

import (
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-serde-go/pkg/codec"
	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/paramtable"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/conc"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

// Task 描述一次转换：读取 Src，按 DstFormat 写入 Dst。
type Task struct {
	SrcFormat codec.Format
	Src       string
	DstFormat codec.Format
	Dst       string
}

// TaskOf 根据扩展名推断两端格式。
func TaskOf(src, dst string) (Task, error) {
	srcFormat, err := codec.FormatOfPath(src)
	if err != nil {
		return Task{}, err
	}
	dstFormat, err := codec.FormatOfPath(dst)
	if err != nil {
		return Task{}, err
	}
	return Task{SrcFormat: srcFormat, Src: src, DstFormat: dstFormat, Dst: dst}, nil
}

// ErrClosed 表示 Converter 已经关闭。
var ErrClosed = errors.New("convert: converter is closed")

// Converter 持有各格式的编解码器与批量转换用的协程池，可并发使用。
type Converter struct {
	log.Binder

	codecs   map[codec.Format]codec.ValueCodec
	workers  int
	poolOpts []conc.PoolOption

	mu     sync.Mutex
	pool   *conc.Pool[struct{}]
	closed bool
}

// New 按 cfg 创建 Converter，cfg 为 nil 时使用默认参数，fs 为 nil 时使用本地文件系统。
func New(cfg *paramtable.Config, fs afero.Fs) (*Converter, error) {
	if cfg == nil {
		cfg = paramtable.Default()
	}
	codecs := make(map[codec.Format]codec.ValueCodec, len(codec.Formats()))
	for _, f := range codec.Formats() {
		c, err := codec.Open(f, cfg, fs)
		if err != nil {
			return nil, err
		}
		codecs[f] = c
	}
	workers := cfg.Convert.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Converter{
		codecs:   codecs,
		workers:  workers,
		poolOpts: []conc.PoolOption{
			conc.WithNonBlocking(cfg.Convert.NonBlocking),
			conc.WithExpiryDuration(cfg.Convert.Expiry),
			// 编解码器中的 panic 只让对应任务失败。
			conc.WithConcealPanic(true),
		},
	}, nil
}

// Codec 返回 format 对应的编解码器。
func (c *Converter) Codec(format codec.Format) (codec.ValueCodec, error) {
	vc, ok := c.codecs[format]
	if !ok {
		return nil, errors.Wrapf(codec.ErrUnknownFormat, "format=%q", string(format))
	}
	return vc, nil
}

// SetLogger 同时替换所有编解码器的 Logger。
func (c *Converter) SetLogger(logger *log.MLogger) {
	c.Binder.SetLogger(logger)
	for _, vc := range c.codecs {
		vc.SetLogger(logger)
	}
}

// Convert 读取 src 并写入 dst，两端各自的有损规则照常生效。
// 读取失败时不会创建或改动 dst。
func (c *Converter) Convert(srcFormat codec.Format, src string, dstFormat codec.Format, dst string) error {
	return c.Run(Task{SrcFormat: srcFormat, Src: src, DstFormat: dstFormat, Dst: dst})
}

// CSVToJSON 将 CSV 文件转换为 JSON 对象数组，所有值均为字符串。
func (c *Converter) CSVToJSON(src, dst string) error {
	return c.Convert(codec.FormatCSV, src, codec.FormatJSON, dst)
}

// Run 执行一次转换。
func (c *Converter) Run(t Task) error {
	start := time.Now()
	logger := c.Logger().With(
		zap.String("src", t.Src),
		zap.String("dst", t.Dst),
		zap.String("srcFormat", string(t.SrcFormat)),
		zap.String("dstFormat", string(t.DstFormat)),
	)

	err := c.run(t)
	if err != nil {
		logger.Warn("convert failed", log.FieldError(err))
		return err
	}
	logger.Debug("convert done", zap.Duration("duration", time.Since(start)))
	return nil
}

func (c *Converter) run(t Task) error {
	decoder, err := c.Codec(t.SrcFormat)
	if err != nil {
		return err
	}
	encoder, err := c.Codec(t.DstFormat)
	if err != nil {
		return err
	}
	v, err := decoder.Decode(t.Src)
	if err != nil {
		return err
	}
	return encoder.Encode(v, t.Dst)
}

// Batch 在协程池上并发执行 tasks，等待全部完成后返回合并的错误。
// 各任务互不影响，某个任务失败不会中断其它任务。
func (c *Converter) Batch(tasks ...Task) error {
	if len(tasks) == 0 {
		return nil
	}
	pool, err := c.acquire()
	if err != nil {
		return err
	}

	metrics.ConvertPendingTasks.Add(float64(len(tasks)))
	var started atomic.Int64
	futures := make([]*conc.Future[struct{}], 0, len(tasks))
	for _, t := range tasks {
		futures = append(futures, pool.Submit(func() (struct{}, error) {
			started.Inc()
			defer metrics.ConvertPendingTasks.Dec()
			return struct{}{}, c.Run(t)
		}))
	}

	errs := conc.AwaitAll(futures...)
	// 未能提交的任务不会执行，在这里补上计数。
	metrics.ConvertPendingTasks.Sub(float64(int64(len(tasks)) - started.Load()))

	for i, err := range errs {
		if err != nil {
			errs[i] = errors.Wrapf(err, "convert %s to %s", tasks[i].Src, tasks[i].Dst)
		}
	}
	return merr.Combine(errs...)
}

// acquire 返回协程池，首次调用时创建。
func (c *Converter) acquire() (*conc.Pool[struct{}], error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}
	if c.pool == nil {
		c.pool = conc.NewPool[struct{}](c.workers, c.poolOpts...)
	}
	return c.pool, nil
}

// Close 释放协程池，之后的 Batch 返回 ErrClosed。
// 进行中的 Batch 不会被等待，尚未提交的任务以错误结束。
func (c *Converter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.pool != nil {
		c.pool.Release()
		c.pool = nil
	}
}

var (
	defaultOnce      sync.Once
	defaultConverter *Converter
)

func getDefault() *Converter {
	defaultOnce.Do(func() {
		c, err := New(nil, nil)
		if err != nil {
			panic(err)
		}
		defaultConverter = c
	})
	return defaultConverter
}

// CSVToJSON 使用默认参数将 CSV 文件转换为 JSON。
func CSVToJSON(src, dst string) error {
	return getDefault().CSVToJSON(src, dst)
}

// Convert 使用默认参数转换文件。
func Convert(srcFormat codec.Format, src string, dstFormat codec.Format, dst string) error {
	return getDefault().Convert(srcFormat, src, dstFormat, dst)
}

// Batch 使用默认参数批量转换文件。
func Batch(tasks ...Task) error {
	return getDefault().Batch(tasks...)
}
