package objgraph

import (
	"bytes"
	"cmp"
	"reflect"
	"slices"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

type ptrKey struct {
	t reflect.Type
	p uintptr
}

// capturer 将一个对象图展开为节点树，每次序列化使用一个新的 capturer。
type capturer struct {
	reg      *Registry
	maxDepth int
	ids      map[ptrKey]uint32
}

func newCapturer(reg *Registry, maxDepth int) *capturer {
	return &capturer{
		reg:      reg,
		maxDepth: maxDepth,
		ids:      make(map[ptrKey]uint32),
	}
}

// root 捕获根对象，根节点总是带类型标签。
func (c *capturer) root(obj any) (*node, error) {
	return c.capture(reflect.ValueOf(&obj).Elem(), 0)
}

func (c *capturer) capture(v reflect.Value, depth int) (*node, error) {
	t := v.Type()
	if depth > c.maxDepth {
		return nil, merr.WrapErrUnsupportedObject(t.String(), "object graph is too deep")
	}
	if err := c.reg.capturable(t); err != nil {
		return nil, err
	}
	if k, ok := marshalKind(t); ok {
		return marshalNode(v, k)
	}

	switch v.Kind() {
	case reflect.Bool:
		return &node{K: kindBool, B: v.Bool()}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return &node{K: kindInt, I: v.Int()}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &node{K: kindUint, U: v.Uint()}, nil
	case reflect.Float32, reflect.Float64:
		return &node{K: kindFloat, F: v.Float()}, nil
	case reflect.String:
		return &node{K: kindString, S: v.String()}, nil
	case reflect.Slice:
		if v.IsNil() {
			return newNil(), nil
		}
		if t.Elem().Kind() == reflect.Uint8 {
			return &node{K: kindBytes, Y: bytes.Clone(v.Bytes())}, nil
		}
		items, err := c.items(v, depth)
		if err != nil {
			return nil, err
		}
		return &node{K: kindSlice, Items: items}, nil
	case reflect.Array:
		items, err := c.items(v, depth)
		if err != nil {
			return nil, err
		}
		return &node{K: kindArray, Items: items}, nil
	case reflect.Map:
		if v.IsNil() {
			return newNil(), nil
		}
		return c.mapNode(v, depth)
	case reflect.Struct:
		return c.structNode(v, depth)
	case reflect.Pointer:
		if v.IsNil() {
			return newNil(), nil
		}
		key := ptrKey{t: t, p: v.Pointer()}
		if id, ok := c.ids[key]; ok {
			return &node{K: kindPtr, Ref: id}, nil
		}
		// 先分配编号再展开，环状引用在展开过程中会命中上面的分支。
		id := uint32(len(c.ids) + 1)
		c.ids[key] = id
		elem, err := c.capture(v.Elem(), depth+1)
		if err != nil {
			return nil, err
		}
		return &node{K: kindPtr, ID: id, Elem: elem}, nil
	case reflect.Interface:
		if v.IsNil() {
			return newNil(), nil
		}
		elem := v.Elem()
		tag, err := c.reg.tagOf(elem.Type())
		if err != nil {
			return nil, err
		}
		n, err := c.capture(elem, depth)
		if err != nil {
			return nil, err
		}
		n.T = tag
		return n, nil
	default:
		return nil, merr.WrapErrUnsupportedObject(t.String(), v.Kind().String()+" cannot be captured")
	}
}

func (c *capturer) items(v reflect.Value, depth int) ([]*node, error) {
	items := make([]*node, v.Len())
	for i := range items {
		n, err := c.capture(v.Index(i), depth+1)
		if err != nil {
			return nil, err
		}
		items[i] = n
	}
	return items, nil
}

func (c *capturer) mapNode(v reflect.Value, depth int) (*node, error) {
	keys := v.MapKeys()
	// 键排序后输出，同一个 map 总是得到相同的字节。
	slices.SortStableFunc(keys, compareKeys)

	entries := make([]entry, 0, len(keys))
	for _, k := range keys {
		kn, err := c.capture(k, depth+1)
		if err != nil {
			return nil, err
		}
		vn, err := c.capture(v.MapIndex(k), depth+1)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{K: kn, V: vn})
	}
	return &node{K: kindMap, Entries: entries}, nil
}

func (c *capturer) structNode(v reflect.Value, depth int) (*node, error) {
	if c.reg.opaque(v.Type()) {
		return nil, merr.WrapErrUnsupportedObject(v.Type().String(), "struct has no exported fields")
	}
	layout := c.reg.layout(v.Type())
	fields := make([]field, 0, len(layout))
	for _, f := range layout {
		n, err := c.capture(v.Field(f.index), depth+1)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{N: f.name, V: n})
	}
	return &node{K: kindStruct, Fields: fields}, nil
}

// compareKeys 对有序的基础类型排序，其它类型视为相等并保持原有顺序。
func compareKeys(a, b reflect.Value) int {
	switch a.Kind() {
	case reflect.String:
		return cmp.Compare(a.String(), b.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return cmp.Compare(a.Int(), b.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return cmp.Compare(a.Uint(), b.Uint())
	case reflect.Float32, reflect.Float64:
		return cmp.Compare(a.Float(), b.Float())
	case reflect.Bool:
		return cmp.Compare(boolRank(a.Bool()), boolRank(b.Bool()))
	default:
		return 0
	}
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
