package objgraph

import (
	"fmt"
	"math"
	"reflect"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/lk2023060901/danmu-serde-go/internal/codecutil"
	"github.com/lk2023060901/danmu-serde-go/internal/fileio"
	"github.com/lk2023060901/danmu-serde-go/internal/serializer"
	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

// Name 为格式名。
const Name = "objgraph"

// Codec 是对象图编解码器，可并发使用。
type Codec struct {
	log.Binder

	reg        *Registry
	fs         afero.Fs
	serializer serializer.Serializer
	format     serializer.Format
	maxBytes   int64
	maxDepth   int
}

// New 创建使用 reg 的 Codec，reg 为 nil 时使用 DefaultRegistry。
func New(reg *Registry, opts ...Option) *Codec {
	o := &options{
		serializer: serializer.CBORSerializer{},
		maxBytes:   DefaultMaxBytes,
		maxDepth:   DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(o)
	}
	format, err := serializer.FormatOf(o.serializer)
	if err != nil {
		panic(err)
	}
	if reg == nil {
		reg = DefaultRegistry
	}
	return &Codec{
		reg:        reg,
		fs:         fileio.OrOs(o.fs),
		serializer: o.serializer,
		format:     format,
		maxBytes:   o.maxBytes,
		maxDepth:   o.maxDepth,
	}
}

func (c *Codec) Name() string { return Name }

// Registry 返回 Codec 使用的 Registry。
func (c *Codec) Registry() *Registry { return c.reg }

// Serialize 将 obj 写入 path，覆盖已有文件。
// obj 含无法捕获的内容或未登记的动态类型时返回 merr.ErrUnsupportedObject，且不会创建或改动 path。
func (c *Codec) Serialize(obj any, path string) error {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpEncode, path)
	data, err := c.Marshal(obj)
	if err != nil {
		return op.Done(0, err)
	}
	return op.Done(len(data), fileio.AtomicWrite(c.fs, path, data))
}

// Deserialize 读取 path 并重建对象。
//
// 不要对来源不可信的文件调用 Deserialize，见包文档中的安全提示。
func (c *Codec) Deserialize(path string) (any, error) {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpDecode, path)
	data, err := fileio.ReadFile(c.fs, path)
	if err != nil {
		return nil, op.Done(0, err)
	}
	obj, err := c.unmarshal(path, data)
	return obj, op.Done(len(data), err)
}

// Marshal 返回 obj 的完整文件内容。
func (c *Codec) Marshal(obj any) ([]byte, error) {
	root, err := newCapturer(c.reg, c.maxDepth).root(obj)
	if err != nil {
		return nil, err
	}
	payload, err := c.serializer.Marshal(root)
	if err != nil {
		return nil, merr.WrapErrUnsupportedObject(typeName(obj), err.Error())
	}
	if int64(len(payload)) > c.maxBytes || int64(len(payload)) > math.MaxUint32 {
		return nil, merr.WrapErrUnsupportedObject(typeName(obj), fmt.Sprintf("payload of %d bytes exceeds limit %d", len(payload), c.maxBytes))
	}
	return pack(c.format, payload), nil
}

// Unmarshal 从完整文件内容重建对象。
func (c *Codec) Unmarshal(data []byte) (any, error) {
	return c.unmarshal("", data)
}

func (c *Codec) unmarshal(path string, data []byte) (any, error) {
	format, payload, err := unpack(path, data, c.maxBytes)
	if err != nil {
		return nil, err
	}
	s, err := serializer.ByFormat(format)
	if err != nil {
		return nil, merr.WrapErrCorruptData(path, err.Error())
	}

	var root node
	if err := s.Unmarshal(payload, &root); err != nil {
		return nil, merr.WrapErrCorruptData(path, "decode payload: "+err.Error())
	}
	obj, err := newRebuilder(c.reg, c.maxDepth).root(&root)
	if err != nil {
		if errors.Is(err, errCorrupt) {
			return nil, merr.WrapErrCorruptData(path, err.Error())
		}
		return nil, err
	}
	return obj, nil
}

// DeserializeAs 读取 path 并要求根对象的类型为 T。
func DeserializeAs[T any](c *Codec, path string) (T, error) {
	var zero T
	obj, err := c.Deserialize(path)
	if err != nil {
		return zero, err
	}
	if obj == nil {
		return zero, nil
	}
	v, ok := obj.(T)
	if !ok {
		return zero, merr.WrapErrUnsupportedObject(typeName(obj), "root is not "+reflect.TypeFor[T]().String())
	}
	return v, nil
}

func typeName(obj any) string {
	if obj == nil {
		return "nil"
	}
	return reflect.TypeOf(obj).String()
}

// DefaultRegistry 为包级函数使用的 Registry。
var DefaultRegistry = NewRegistry()

var defaultCodec = New(DefaultRegistry)

// Register 在 DefaultRegistry 中登记类型。
func Register(name string, sample any) error {
	return DefaultRegistry.Register(name, sample)
}

// Serialize 使用默认配置把 obj 写入 path。
func Serialize(obj any, path string) error {
	return defaultCodec.Serialize(obj, path)
}

// Deserialize 使用默认配置读取 path，不要用于来源不可信的文件。
func Deserialize(path string) (any, error) {
	return defaultCodec.Deserialize(path)
}
