package xmlcodec

import (
	"bytes"
	"encoding/xml"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/lk2023060901/danmu-serde-go/internal/codecutil"
	"github.com/lk2023060901/danmu-serde-go/internal/fileio"
	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

// Name 为格式名。
const Name = "xml"

// Codec 是 XML 编解码器，可并发使用。
type Codec struct {
	log.Binder

	fs          afero.Fs
	root        string
	indent      int
	declaration bool
}

// New 创建 Codec。
func New(opts ...Option) *Codec {
	o := &options{root: DefaultRoot, declaration: true}
	for _, opt := range opts {
		opt(o)
	}
	return &Codec{
		fs:          fileio.OrOs(o.fs),
		root:        o.root,
		indent:      o.indent,
		declaration: o.declaration,
	}
}

func (c *Codec) Name() string { return Name }

// EncodeMap 将 m 写入 path，覆盖已有文件。
// 键不是合法元素名、值为 List/Map、或文本含 XML 不允许的字符时返回 merr.ErrUnsupportedShape，
// 此时不会创建或改动 path。
func (c *Codec) EncodeMap(m *value.Map, path string) error {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpEncode, path)
	data, err := c.MarshalMap(m)
	if err != nil {
		return op.Done(0, err)
	}
	return op.Done(len(data), fileio.AtomicWrite(c.fs, path, data))
}

// DecodeMap 读取 path，按 InferScalar 恢复每个子元素的值。
func (c *Codec) DecodeMap(path string) (*value.Map, error) {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpDecode, path)
	data, err := fileio.ReadFile(c.fs, path)
	if err != nil {
		return nil, op.Done(0, err)
	}
	m, err := c.unmarshal(path, data)
	return m, op.Done(len(data), err)
}

// Encode 只接受 Map 变体。
func (c *Codec) Encode(v value.Value, path string) error {
	m, ok := v.AsMap()
	if !ok {
		err := merr.WrapErrUnsupportedShape("$", v.Kind().String(), "root must be a map")
		return codecutil.Begin(c.Logger(), Name, metrics.OpEncode, path).Done(0, err)
	}
	return c.EncodeMap(m, path)
}

// Decode 以 Map 变体返回解码结果。
func (c *Codec) Decode(path string) (value.Value, error) {
	m, err := c.DecodeMap(path)
	if err != nil {
		return value.Null(), err
	}
	return value.MapOf(m), nil
}

// MarshalMap 返回 m 的 XML 文本。
func (c *Codec) MarshalMap(m *value.Map) ([]byte, error) {
	if m == nil {
		m = value.NewMap()
	}

	var buf bytes.Buffer
	if c.declaration {
		buf.WriteString(xml.Header)
	}
	enc := xml.NewEncoder(&buf)
	if c.indent > 0 {
		enc.Indent("", strings.Repeat(" ", c.indent))
	}

	root := xml.StartElement{Name: xml.Name{Local: c.root}}
	if err := enc.EncodeToken(root); err != nil {
		return nil, merr.WrapErrUnsupportedShape("$", value.KindMap.String(), err.Error())
	}

	var err error
	m.Range(func(key string, v value.Value) bool {
		if !validName(key) {
			err = merr.WrapErrUnsupportedShape(key, v.Kind().String(), "key is not a valid element name")
			return false
		}
		text, ok := value.ScalarText(v)
		if !ok {
			err = merr.WrapErrUnsupportedShape(key, v.Kind().String(), "only scalar values are supported")
			return false
		}
		if !validText(text) {
			err = merr.WrapErrUnsupportedShape(key, v.Kind().String(), "text contains characters not allowed in xml")
			return false
		}
		child := xml.StartElement{Name: xml.Name{Local: key}}
		if err = enc.EncodeToken(child); err != nil {
			return false
		}
		if text != "" {
			if err = enc.EncodeToken(xml.CharData(text)); err != nil {
				return false
			}
		}
		err = enc.EncodeToken(child.End())
		return err == nil
	})
	if err != nil {
		if merr.Kind(err) == "Unexpected" {
			err = merr.WrapErrUnsupportedShape("$", value.KindMap.String(), err.Error())
		}
		return nil, err
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, merr.WrapErrUnsupportedShape("$", value.KindMap.String(), err.Error())
	}
	if err := enc.Close(); err != nil {
		return nil, merr.WrapErrUnsupportedShape("$", value.KindMap.String(), err.Error())
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// UnmarshalMap 解析 XML 文本。
func (c *Codec) UnmarshalMap(data []byte) (*value.Map, error) {
	return c.unmarshal("", data)
}

func (c *Codec) unmarshal(path string, data []byte) (*value.Map, error) {
	m, err := parse(data)
	if err != nil {
		return nil, merr.WrapErrParseFailure(path, err)
	}
	return m, nil
}

// parse 读取根元素下每个子元素的文本。
// 子元素的文本为第一个孙元素之前直接出现的字符数据，属性、注释、处理指令与孙元素都被忽略。
func parse(data []byte) (*value.Map, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		m        *value.Map
		depth    int
		key      string
		text     strings.Builder
		textDone bool
		closed   bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if closed {
				return nil, errors.Newf("unexpected element <%s> after root", t.Name.Local)
			}
			depth++
			switch depth {
			case 1:
				m = value.NewMap()
			case 2:
				key = elementKey(t.Name)
				text.Reset()
				textDone = false
			default:
				textDone = true
			}
		case xml.EndElement:
			if depth == 2 {
				m.Set(key, InferScalar(text.String()))
			}
			depth--
			if depth == 0 {
				closed = true
			}
		case xml.CharData:
			switch {
			case depth == 2 && !textDone:
				text.Write(t)
			case depth == 0 && len(bytes.TrimSpace(t)) > 0:
				return nil, errors.New("text outside root element")
			}
		}
	}

	if m == nil {
		return nil, errors.New("missing root element")
	}
	return m, nil
}

func elementKey(name xml.Name) string {
	if name.Space == "" {
		return name.Local
	}
	return "{" + name.Space + "}" + name.Local
}

var defaultCodec = New()

// Encode 使用默认配置把 m 写入 path。
func Encode(m *value.Map, path string) error {
	return defaultCodec.EncodeMap(m, path)
}

// Decode 使用默认配置读取 path。
func Decode(path string) (*value.Map, error) {
	return defaultCodec.DecodeMap(path)
}
