package jsoncodec

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/afero"

	"github.com/lk2023060901/danmu-serde-go/internal/codecutil"
	"github.com/lk2023060901/danmu-serde-go/internal/fileio"
	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

// Name 为格式名。
const Name = "json"

// Codec 是 JSON 编解码器，可并发使用。
type Codec struct {
	log.Binder

	fs     afero.Fs
	indent int
	api    jsoniter.API
}

// New 创建 Codec。
func New(opts ...Option) *Codec {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return &Codec{
		fs:     fileio.OrOs(o.fs),
		indent: o.indent,
		api: jsoniter.Config{
			EscapeHTML:    false,
			IndentionStep: o.indent,
		}.Froze(),
	}
}

func (c *Codec) Name() string { return Name }

// Encode 将 v 写入 path，覆盖已有文件。
// v 含 NaN/Inf 或非法 UTF-8 文本时返回 merr.ErrUnsupportedShape，且不会创建或改动 path。
func (c *Codec) Encode(v value.Value, path string) error {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpEncode, path)
	data, err := c.marshal(v)
	if err != nil {
		return op.Done(0, err)
	}
	if c.indent > 0 {
		data = append(data, '\n')
	}
	return op.Done(len(data), fileio.AtomicWrite(c.fs, path, data))
}

// Decode 读取 path 并解析为 Value。
// 文件不存在返回 merr.ErrNotFound，内容不是合法 JSON 返回 merr.ErrParseFailure。
func (c *Codec) Decode(path string) (value.Value, error) {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpDecode, path)
	data, err := fileio.ReadFile(c.fs, path)
	if err != nil {
		return value.Null(), op.Done(0, err)
	}
	v, err := c.unmarshal(path, data)
	return v, op.Done(len(data), err)
}

// Marshal 返回 v 的 JSON 文本。
func (c *Codec) Marshal(v value.Value) ([]byte, error) {
	return c.marshal(v)
}

// Unmarshal 将 JSON 文本解析为 Value。
func (c *Codec) Unmarshal(data []byte) (value.Value, error) {
	return c.unmarshal("", data)
}

var defaultCodec = New()

// Encode 使用默认配置把 v 写入 path。
func Encode(v value.Value, path string) error {
	return defaultCodec.Encode(v, path)
}

// Decode 使用默认配置读取 path。
func Decode(path string) (value.Value, error) {
	return defaultCodec.Decode(path)
}
