package jsoncodec

import (
	"strconv"
	"unicode/utf8"

	jsoniter "github.com/json-iterator/go"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

func (c *Codec) marshal(v value.Value) ([]byte, error) {
	stream := c.api.BorrowStream(nil)
	defer c.api.ReturnStream(stream)

	if err := writeValue(stream, v, "$"); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, merr.WrapErrUnsupportedShape("$", v.Kind().String(), stream.Error.Error())
	}
	// stream 归还后缓冲区会被复用，这里必须拷贝。
	out := make([]byte, len(stream.Buffer()))
	copy(out, stream.Buffer())
	return out, nil
}

// writeValue 递归写出 v，where 为出错时报告的位置，形如 $.a[0]。
func writeValue(stream *jsoniter.Stream, v value.Value, where string) error {
	switch v.Kind() {
	case value.KindNull:
		stream.WriteNil()
	case value.KindBool:
		b, _ := v.AsBool()
		stream.WriteBool(b)
	case value.KindInt:
		i, _ := v.AsInt()
		stream.WriteInt64(i)
	case value.KindFloat:
		if !v.IsFinite() {
			return merr.WrapErrUnsupportedShape(where, v.Kind().String(), "non-finite float")
		}
		f, _ := v.AsFloat()
		stream.WriteRaw(value.FormatFloat(f))
	case value.KindStr:
		s, _ := v.AsStr()
		if !utf8.ValidString(s) {
			return merr.WrapErrUnsupportedShape(where, v.Kind().String(), "invalid utf-8")
		}
		stream.WriteString(s)
	case value.KindList:
		items, _ := v.AsList()
		if len(items) == 0 {
			stream.WriteEmptyArray()
			return nil
		}
		stream.WriteArrayStart()
		for i, item := range items {
			if i > 0 {
				stream.WriteMore()
			}
			if err := writeValue(stream, item, where+"["+strconv.Itoa(i)+"]"); err != nil {
				return err
			}
		}
		stream.WriteArrayEnd()
	case value.KindMap:
		m, _ := v.AsMap()
		if m.Len() == 0 {
			stream.WriteEmptyObject()
			return nil
		}
		stream.WriteObjectStart()
		var err error
		first := true
		m.Range(func(key string, item value.Value) bool {
			if !utf8.ValidString(key) {
				err = merr.WrapErrUnsupportedShape(where+"."+key, value.KindStr.String(), "invalid utf-8 key")
				return false
			}
			if !first {
				stream.WriteMore()
			}
			first = false
			stream.WriteObjectField(key)
			err = writeValue(stream, item, where+"."+key)
			return err == nil
		})
		if err != nil {
			return err
		}
		stream.WriteObjectEnd()
	default:
		return merr.WrapErrUnsupportedShape(where, v.Kind().String())
	}
	return nil
}
