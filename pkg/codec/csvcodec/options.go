package csvcodec

import (
	"unicode/utf8"

	"github.com/spf13/afero"
)

type options struct {
	fs    afero.Fs
	comma rune
	crlf  bool
}

// Option 配置 Codec。
type Option func(*options)

// WithFs 指定读写文件使用的文件系统，默认为本地文件系统。
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithDelimiter 指定分隔符，非法的分隔符会被忽略并保持默认的逗号。
func WithDelimiter(r rune) Option {
	return func(o *options) {
		if ValidDelimiter(r) {
			o.comma = r
		}
	}
}

// WithCRLF 指定写出时是否使用 \r\n 换行。
func WithCRLF(v bool) Option {
	return func(o *options) {
		o.crlf = v
	}
}

// ValidDelimiter 判断 r 能否作为分隔符，规则与 encoding/csv 一致。
func ValidDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}
