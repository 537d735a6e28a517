package jsoncodec

import "github.com/spf13/afero"

type options struct {
	fs     afero.Fs
	indent int
}

// Option 配置 Codec。
type Option func(*options)

// WithFs 指定读写文件使用的文件系统，默认为本地文件系统。
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithIndent 指定缩进空格数，0 表示紧凑输出。
func WithIndent(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.indent = n
		}
	}
}
