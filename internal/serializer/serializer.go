package serializer

import "github.com/cockroachdb/errors"

// Serializer 抽象了“对象 <-> 字节流”的序列化能力。
//
// 对象图编解码器通过它写出节点树，默认实现为 CBOR，调试时可切换为 JSON。
type Serializer interface {
	// Marshal 将任意对象编码为字节序列。
	Marshal(v any) ([]byte, error)

	// Unmarshal 将字节序列解码到目标对象。
	//
	// v 通常为指针类型，用于接收解码结果。
	Unmarshal(data []byte, v any) error

	// Name 返回格式名，用于日志与配置。
	Name() string
}

// Format 为写入文件头的负载格式编号。
type Format byte

const (
	FormatCBOR Format = 1
	FormatJSON Format = 2
)

// ErrUnknownFormat 表示负载格式编号或名字无法识别。
var ErrUnknownFormat = errors.New("serializer: unknown format")

// ByFormat 根据格式编号返回对应的 Serializer。
func ByFormat(f Format) (Serializer, error) {
	switch f {
	case FormatCBOR:
		return CBORSerializer{}, nil
	case FormatJSON:
		return JSONSerializer{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "format=%d", f)
	}
}

// ParseFormat 将配置中的格式名转换为格式编号。
func ParseFormat(name string) (Format, error) {
	switch name {
	case "", "cbor":
		return FormatCBOR, nil
	case "json":
		return FormatJSON, nil
	default:
		return 0, errors.Wrapf(ErrUnknownFormat, "name=%q", name)
	}
}

// FormatOf 返回 Serializer 对应的格式编号。
func FormatOf(s Serializer) (Format, error) {
	return ParseFormat(s.Name())
}
