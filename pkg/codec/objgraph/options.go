package objgraph

import (
	"github.com/spf13/afero"

	"github.com/lk2023060901/danmu-serde-go/internal/serializer"
)

const (
	// DefaultMaxBytes 为默认的负载大小上限。
	DefaultMaxBytes int64 = 64 << 20
	// DefaultMaxDepth 为默认的对象图嵌套上限。
	DefaultMaxDepth = 512
)

type options struct {
	fs         afero.Fs
	serializer serializer.Serializer
	maxBytes   int64
	maxDepth   int
}

// Option 配置 Codec。
type Option func(*options)

// WithFs 指定读写文件使用的文件系统，默认为本地文件系统。
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithSerializer 指定负载格式，默认为 CBOR。
// 反序列化时以文件头记录的格式为准。
func WithSerializer(s serializer.Serializer) Option {
	return func(o *options) {
		if s != nil {
			o.serializer = s
		}
	}
}

// WithMaxBytes 指定负载大小上限，不大于 0 时使用默认值。
func WithMaxBytes(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.maxBytes = n
		}
	}
}

// WithMaxDepth 指定对象图嵌套上限，不大于 0 时使用默认值。
func WithMaxDepth(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxDepth = n
		}
	}
}
