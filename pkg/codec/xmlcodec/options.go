package xmlcodec

import "github.com/spf13/afero"

// DefaultRoot 为默认的根元素名。
const DefaultRoot = "data"

type options struct {
	fs          afero.Fs
	root        string
	indent      int
	declaration bool
}

// Option 配置 Codec。
type Option func(*options)

// WithFs 指定读写文件使用的文件系统，默认为本地文件系统。
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		o.fs = fs
	}
}

// WithRoot 指定根元素名，非法名字会被忽略。
func WithRoot(name string) Option {
	return func(o *options) {
		if validName(name) {
			o.root = name
		}
	}
}

// WithIndent 指定缩进空格数，0 表示不换行。
func WithIndent(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.indent = n
		}
	}
}

// WithDeclaration 指定是否写出 XML 声明，默认写出。
func WithDeclaration(v bool) Option {
	return func(o *options) {
		o.declaration = v
	}
}

// ValidRoot 判断 name 能否作为根元素名。
func ValidRoot(name string) bool {
	return validName(name)
}
