// Package value 定义所有文本类编解码器共享的内存数据模型。
//
// Value 是一个封闭的标签联合体（tagged union），变体为：
// Null、Bool、Int、Float、Str、List、Map。
// 所有校验与类型判断都通过对 Kind 的穷举 switch 完成。
package value

import (
	"fmt"
	"math"
)

// Kind 表示 Value 的变体类型。
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindMap
)

var kindNames = map[Kind]string{
	KindNull:  "null",
	KindBool:  "bool",
	KindInt:   "int",
	KindFloat: "float",
	KindStr:   "str",
	KindList:  "list",
	KindMap:   "map",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value 为不可变值类型，零值即 Null。
type Value struct {
	kind Kind

	b    bool
	i    int64
	f    float64
	s    string
	list []Value
	m    *Map
}

// Null 返回空值。
func Null() Value { return Value{} }

// Bool 返回布尔值。
func Bool(v bool) Value { return Value{kind: KindBool, b: v} }

// Int 返回整数值。
func Int(v int64) Value { return Value{kind: KindInt, i: v} }

// Float 返回 64 位浮点值。
func Float(v float64) Value { return Value{kind: KindFloat, f: v} }

// Str 返回文本值。
func Str(v string) Value { return Value{kind: KindStr, s: v} }

// List 返回有序列表值。
func List(items ...Value) Value {
	return Value{kind: KindList, list: items}
}

// MapOf 将 Map 包装为 Value。m 为 nil 时返回空 Map。
func MapOf(m *Map) Value {
	if m == nil {
		m = NewMap()
	}
	return Value{kind: KindMap, m: m}
}

// Kind 返回变体类型。
func (v Value) Kind() Kind { return v.kind }

// IsNull 判断是否为 Null。
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsScalar 判断是否为标量（Null/Bool/Int/Float/Str）。
func (v Value) IsScalar() bool {
	switch v.kind {
	case KindNull, KindBool, KindInt, KindFloat, KindStr:
		return true
	default:
		return false
	}
}

// AsBool 返回布尔值，类型不符时 ok 为 false。
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsInt 返回整数值，类型不符时 ok 为 false。
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat 返回浮点值，类型不符时 ok 为 false。
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsStr 返回文本值，类型不符时 ok 为 false。
func (v Value) AsStr() (string, bool) { return v.s, v.kind == KindStr }

// AsList 返回列表元素，类型不符时 ok 为 false。
// 返回的切片与 Value 共享底层存储，调用方不应修改。
func (v Value) AsList() ([]Value, bool) { return v.list, v.kind == KindList }

// AsMap 返回 Map，类型不符时 ok 为 false。
func (v Value) AsMap() (*Map, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	if v.m == nil {
		return NewMap(), true
	}
	return v.m, true
}

// IsFinite 对 Float 判断是否为有限数，其它变体恒为 true。
func (v Value) IsFinite() bool {
	if v.kind != KindFloat {
		return true
	}
	return !math.IsNaN(v.f) && !math.IsInf(v.f, 0)
}

// String 返回便于调试的表示形式。
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "Null"
	case KindBool:
		return fmt.Sprintf("Bool(%t)", v.b)
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.i)
	case KindFloat:
		return fmt.Sprintf("Float(%s)", FormatFloat(v.f))
	case KindStr:
		return fmt.Sprintf("Str(%q)", v.s)
	case KindList:
		return fmt.Sprintf("List%v", v.list)
	case KindMap:
		m, _ := v.AsMap()
		return "Map" + m.String()
	default:
		return v.kind.String()
	}
}
