package objgraph

import (
	"encoding"
	"reflect"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

var (
	binaryMarshalerType   = reflect.TypeFor[encoding.BinaryMarshaler]()
	binaryUnmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
	textMarshalerType     = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType   = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// marshalKind 返回结构体 t 自带编组方法时使用的节点类别，二进制优先。
// 编码与解码方法必须成对出现，*t 的方法集也计算在内。
func marshalKind(t reflect.Type) (kind, bool) {
	if t.Kind() != reflect.Struct {
		return kindNil, false
	}
	pt := reflect.PointerTo(t)
	switch {
	case pt.Implements(binaryMarshalerType) && pt.Implements(binaryUnmarshalerType):
		return kindBinary, true
	case pt.Implements(textMarshalerType) && pt.Implements(textUnmarshalerType):
		return kindText, true
	}
	return kindNil, false
}

// addressable 返回 v 的地址，v 不可寻址时先复制一份。
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v.Addr()
	}
	p := reflect.New(v.Type())
	p.Elem().Set(v)
	return p
}

func marshalNode(v reflect.Value, k kind) (*node, error) {
	p := addressable(v).Interface()
	if k == kindBinary {
		data, err := p.(encoding.BinaryMarshaler).MarshalBinary()
		if err != nil {
			return nil, merr.WrapErrUnsupportedObject(v.Type().String(), err.Error())
		}
		return &node{K: kindBinary, Y: data}, nil
	}
	text, err := p.(encoding.TextMarshaler).MarshalText()
	if err != nil {
		return nil, merr.WrapErrUnsupportedObject(v.Type().String(), err.Error())
	}
	return &node{K: kindText, S: string(text)}, nil
}

func unmarshalNode(dst reflect.Value, n *node, k kind) error {
	if err := expect(n, k, dst.Type()); err != nil {
		return err
	}
	p := addressable(dst)
	var err error
	if k == kindBinary {
		err = p.Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(n.Y)
	} else {
		err = p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(n.S))
	}
	if err != nil {
		return corruptf("restore %s: %v", dst.Type(), err)
	}
	if !dst.CanAddr() {
		dst.Set(p.Elem())
	}
	return nil
}
