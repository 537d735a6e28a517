package value

import (
	"strconv"
	"strings"
)

// Entry 为 Map 中的一个键值对。
type Entry struct {
	Key   string
	Value Value
}

// Map 是字符串键到 Value 的映射。
//
// 约定：
//   - 键不重复，重复 Set 会覆盖旧值但保留首次插入的位置；
//   - 遍历顺序为插入顺序，仅用于输出稳定性，相等性判断与顺序无关。
type Map struct {
	keys  []string
	index map[string]int
	vals  []Value
}

// NewMap 创建一个空 Map。
func NewMap() *Map {
	return &Map{index: make(map[string]int)}
}

// NewMapFrom 按给定顺序构造 Map。
func NewMapFrom(entries ...Entry) *Map {
	m := &Map{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// MapFrom 按给定顺序构造一个 Map 变体的 Value。
func MapFrom(entries ...Entry) Value {
	return MapOf(NewMapFrom(entries...))
}

// E 构造一个 Entry。
func E(key string, v Value) Entry {
	return Entry{Key: key, Value: v}
}

// Set 写入键值。
func (m *Map) Set(key string, v Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if pos, ok := m.index[key]; ok {
		m.vals[pos] = v
		return
	}
	m.index[key] = len(m.keys)
	m.keys = append(m.keys, key)
	m.vals = append(m.vals, v)
}

// Get 读取键值。
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	pos, ok := m.index[key]
	if !ok {
		return Value{}, false
	}
	return m.vals[pos], true
}

// Has 判断键是否存在。
func (m *Map) Has(key string) bool {
	if m == nil {
		return false
	}
	_, ok := m.index[key]
	return ok
}

// Len 返回键的数量。
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys 返回按插入顺序排列的键的拷贝。
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range 按插入顺序遍历，回调返回 false 时提前结束。
func (m *Map) Range(f func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for i, k := range m.keys {
		if !f(k, m.vals[i]) {
			return
		}
	}
}

// Entries 返回按插入顺序排列的键值对。
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	out := make([]Entry, len(m.keys))
	for i, k := range m.keys {
		out[i] = Entry{Key: k, Value: m.vals[i]}
	}
	return out
}

func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	m.Range(func(k string, v Value) bool {
		if sb.Len() > 1 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(v.String())
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
