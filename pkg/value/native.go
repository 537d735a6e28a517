package value

import (
	"fmt"
	"math"
	"reflect"
	"slices"

	"github.com/samber/lo"
)

// FromNative 将常见的 Go 原生值转换为 Value。
//
// 支持 nil、bool、所有整数类型、float32/float64、string、
// []any 及元素为上述类型的切片、map[string]any 及 map[string]T、
// 以及 Value 自身。不支持的类型返回错误。
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return t, nil
	case *Map:
		return MapOf(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint:
		if uint64(t) > math.MaxInt64 {
			return Value{}, fmt.Errorf("value: %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case uint64:
		if t > math.MaxInt64 {
			return Value{}, fmt.Errorf("value: %d overflows int64", t)
		}
		return Int(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case string:
		return Str(t), nil
	case []any:
		items := make([]Value, 0, len(t))
		for i, item := range t {
			v, err := FromNative(item)
			if err != nil {
				return Value{}, fmt.Errorf("value: index %d: %w", i, err)
			}
			items = append(items, v)
		}
		return List(items...), nil
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(t) {
			v, err := FromNative(t[k])
			if err != nil {
				return Value{}, fmt.Errorf("value: key %q: %w", k, err)
			}
			m.Set(k, v)
		}
		return MapOf(m), nil
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			v, err := FromNative(rv.Index(i).Interface())
			if err != nil {
				return Value{}, fmt.Errorf("value: index %d: %w", i, err)
			}
			items = append(items, v)
		}
		return List(items...), nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Value{}, fmt.Errorf("value: map key must be string, got %s", rv.Type().Key())
		}
		native := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			native[iter.Key().String()] = iter.Value().Interface()
		}
		return FromNative(native)
	}
	return Value{}, fmt.Errorf("value: unsupported native type %T", x)
}

// ToNative 将 Value 转换为 Go 原生值：
// nil、bool、int64、float64、string、[]any、map[string]any。
func (v Value) ToNative() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindStr:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.ToNative()
		}
		return out
	case KindMap:
		m, _ := v.AsMap()
		out := make(map[string]any, m.Len())
		m.Range(func(k string, item Value) bool {
			out[k] = item.ToNative()
			return true
		})
		return out
	default:
		return nil
	}
}

// sortedKeys 返回排序后的键，保证由 Go map 构造的 Map 顺序稳定。
func sortedKeys(m map[string]any) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}
