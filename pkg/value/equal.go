package value

import "math"

// Equal 判断两个 Value 是否结构相等。
//
// 规则：
//   - 变体必须一致，Int(1) 与 Float(1.0) 不相等；
//   - Map 的键集合相同且每个键对应的值递归相等，与插入顺序无关；
//   - List 逐元素比较；
//   - Float 中 NaN 与 NaN 视为相等，便于对解码结果做断言。
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindInt:
		return a.i == b.i
	case KindFloat:
		if math.IsNaN(a.f) && math.IsNaN(b.f) {
			return true
		}
		return a.f == b.f
	case KindStr:
		return a.s == b.s
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	case KindMap:
		am, _ := a.AsMap()
		bm, _ := b.AsMap()
		return mapEqual(am, bm)
	default:
		return false
	}
}

func mapEqual(a, b *Map) bool {
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.Range(func(k string, av Value) bool {
		bv, ok := b.Get(k)
		if !ok || !Equal(av, bv) {
			equal = false
			return false
		}
		return true
	})
	return equal
}

// Equal 是 Equal(v, other) 的便捷写法。
func (v Value) Equal(other Value) bool {
	return Equal(v, other)
}
