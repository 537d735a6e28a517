package objgraph

import (
	"bytes"
	"math"
	"reflect"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

// errCorrupt 标记节点树与目标类型不一致，调用方会补上文件路径转换为 merr.ErrCorruptData。
var errCorrupt = errors.New("corrupt node")

func corruptf(format string, args ...any) error {
	return errors.Wrapf(errCorrupt, format, args...)
}

// rebuilder 按节点树重建对象，每次反序列化使用一个新的 rebuilder。
type rebuilder struct {
	reg      *Registry
	maxDepth int
	ptrs     map[uint32]reflect.Value
}

func newRebuilder(reg *Registry, maxDepth int) *rebuilder {
	return &rebuilder{
		reg:      reg,
		maxDepth: maxDepth,
		ptrs:     make(map[uint32]reflect.Value),
	}
}

func (r *rebuilder) root(n *node) (any, error) {
	var obj any
	if err := r.fill(reflect.ValueOf(&obj).Elem(), n, 0); err != nil {
		return nil, err
	}
	return obj, nil
}

// fill 将 n 写入可设置的 dst。
func (r *rebuilder) fill(dst reflect.Value, n *node, depth int) error {
	t := dst.Type()
	if depth > r.maxDepth {
		return corruptf("nesting exceeds %d", r.maxDepth)
	}
	if n == nil {
		return corruptf("missing node for %s", t)
	}
	if err := r.reg.capturable(t); err != nil {
		return err
	}
	if n.K == kindNil {
		dst.SetZero()
		return nil
	}
	if k, ok := marshalKind(t); ok {
		return unmarshalNode(dst, n, k)
	}

	switch t.Kind() {
	case reflect.Interface:
		if n.T == "" {
			return corruptf("missing type tag for %s", t)
		}
		concrete, err := r.reg.resolve(n.T)
		if err != nil {
			return err
		}
		if !concrete.AssignableTo(t) {
			return corruptf("%s is not assignable to %s", concrete, t)
		}
		tmp := reflect.New(concrete).Elem()
		if err := r.fill(tmp, n, depth); err != nil {
			return err
		}
		dst.Set(tmp)
		return nil

	case reflect.Bool:
		if err := expect(n, kindBool, t); err != nil {
			return err
		}
		dst.SetBool(n.B)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if err := expect(n, kindInt, t); err != nil {
			return err
		}
		if dst.OverflowInt(n.I) {
			return corruptf("%d overflows %s", n.I, t)
		}
		dst.SetInt(n.I)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if err := expect(n, kindUint, t); err != nil {
			return err
		}
		if dst.OverflowUint(n.U) {
			return corruptf("%d overflows %s", n.U, t)
		}
		dst.SetUint(n.U)
	case reflect.Float32, reflect.Float64:
		if err := expect(n, kindFloat, t); err != nil {
			return err
		}
		if !math.IsInf(n.F, 0) && !math.IsNaN(n.F) && dst.OverflowFloat(n.F) {
			return corruptf("%g overflows %s", n.F, t)
		}
		dst.SetFloat(n.F)
	case reflect.String:
		if err := expect(n, kindString, t); err != nil {
			return err
		}
		dst.SetString(n.S)

	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			if err := expect(n, kindBytes, t); err != nil {
				return err
			}
			return setBytes(dst, n.Y)
		}
		if err := expect(n, kindSlice, t); err != nil {
			return err
		}
		s := reflect.MakeSlice(t, len(n.Items), len(n.Items))
		for i, item := range n.Items {
			if err := r.fill(s.Index(i), item, depth+1); err != nil {
				return err
			}
		}
		dst.Set(s)
	case reflect.Array:
		if err := expect(n, kindArray, t); err != nil {
			return err
		}
		if len(n.Items) != t.Len() {
			return corruptf("array length %d, want %d", len(n.Items), t.Len())
		}
		for i, item := range n.Items {
			if err := r.fill(dst.Index(i), item, depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		if err := expect(n, kindMap, t); err != nil {
			return err
		}
		m := reflect.MakeMapWithSize(t, len(n.Entries))
		for _, e := range n.Entries {
			k := reflect.New(t.Key()).Elem()
			if err := r.fill(k, e.K, depth+1); err != nil {
				return err
			}
			v := reflect.New(t.Elem()).Elem()
			if err := r.fill(v, e.V, depth+1); err != nil {
				return err
			}
			m.SetMapIndex(k, v)
		}
		dst.Set(m)
	case reflect.Struct:
		if err := expect(n, kindStruct, t); err != nil {
			return err
		}
		layout := r.reg.layout(t)
		for _, f := range n.Fields {
			idx := -1
			for _, info := range layout {
				if info.name == f.N {
					idx = info.index
					break
				}
			}
			if idx < 0 {
				// 旧文件中已删除的字段直接忽略。
				continue
			}
			if err := r.fill(dst.Field(idx), f.V, depth+1); err != nil {
				return err
			}
		}
	case reflect.Pointer:
		if err := expect(n, kindPtr, t); err != nil {
			return err
		}
		if n.Ref != 0 {
			p, ok := r.ptrs[n.Ref]
			if !ok {
				return corruptf("dangling reference %d", n.Ref)
			}
			if p.Type() != t {
				return corruptf("reference %d is %s, want %s", n.Ref, p.Type(), t)
			}
			dst.Set(p)
			return nil
		}
		p := reflect.New(t.Elem())
		if n.ID != 0 {
			if _, dup := r.ptrs[n.ID]; dup {
				return corruptf("duplicate pointer id %d", n.ID)
			}
			r.ptrs[n.ID] = p
		}
		// 先登记再填充，环状引用在填充过程中即可找到该指针。
		dst.Set(p)
		return r.fill(p.Elem(), n.Elem, depth+1)
	default:
		return merr.WrapErrUnsupportedObject(t.String(), t.Kind().String()+" cannot be reconstructed")
	}
	return nil
}

func expect(n *node, want kind, t reflect.Type) error {
	if n.K != want {
		return corruptf("node kind %s cannot be stored in %s", n.K, t)
	}
	return nil
}

func setBytes(dst reflect.Value, data []byte) error {
	if dst.Type().Elem() == reflect.TypeOf(byte(0)) {
		dst.SetBytes(bytes.Clone(data))
		if dst.IsNil() {
			// kindBytes 表示非 nil 的切片，空内容也要保持非 nil。
			dst.SetBytes([]byte{})
		}
		return nil
	}
	s := reflect.MakeSlice(dst.Type(), len(data), len(data))
	for i, b := range data {
		s.Index(i).SetUint(uint64(b))
	}
	dst.Set(s)
	return nil
}
