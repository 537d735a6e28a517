package objgraph

import (
	"os"
	"reflect"
	"slices"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/typeutil"
)

// fieldInfo 为结构体中一个参与序列化的导出字段。
type fieldInfo struct {
	name  string
	index int
}

// Registry 记录可以出现在类型标签中的类型，可并发使用。
//
// 类型标签的语法：
//
//	name            登记过的类型
//	*tag            指向 tag 的指针
//	[]tag           元素为 tag 的切片
//	map[key]tag     键为 key、值为 tag 的 map
type Registry struct {
	mu     sync.RWMutex
	byName map[string]reflect.Type
	byType map[reflect.Type]string
	denied typeutil.Set[reflect.Type]

	layouts sync.Map // reflect.Type -> []fieldInfo
}

// NewRegistry 创建一个预先登记了内置类型的 Registry：
// bool、各类整数与浮点数、string、bytes（[]byte）、list（[]any）、map（map[string]any）。
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]reflect.Type),
		byType: make(map[reflect.Type]string),
		denied: typeutil.NewSet(
			reflect.TypeOf(os.File{}),
			reflect.TypeOf(os.Process{}),
		),
	}
	builtins := []struct {
		name   string
		sample any
	}{
		{"bool", false},
		{"int", int(0)},
		{"int8", int8(0)},
		{"int16", int16(0)},
		{"int32", int32(0)},
		{"int64", int64(0)},
		{"uint", uint(0)},
		{"uint8", uint8(0)},
		{"uint16", uint16(0)},
		{"uint32", uint32(0)},
		{"uint64", uint64(0)},
		{"float32", float32(0)},
		{"float64", float64(0)},
		{"string", ""},
		{"bytes", []byte(nil)},
		{"list", []any(nil)},
		{"map", map[string]any(nil)},
	}
	for _, b := range builtins {
		r.MustRegister(b.name, b.sample)
	}
	return r
}

// Register 以 name 登记 sample 的类型，sample 为指针时登记其指向的类型。
// 同名同类型的重复登记被忽略，名字或类型已被占用时返回错误。
func (r *Registry) Register(name string, sample any) error {
	t := reflect.TypeOf(sample)
	if t == nil {
		return merr.WrapErrUnsupportedObject("nil", "cannot register nil")
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name == "" || strings.ContainsAny(name, "*[]") {
		return merr.WrapErrUnsupportedObject(t.String(), "invalid type name "+name)
	}
	if err := r.capturable(t); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byName[name]; ok {
		if old == t {
			return nil
		}
		return merr.WrapErrUnsupportedObject(t.String(), "name "+name+" already registered for "+old.String())
	}
	if old, ok := r.byType[t]; ok {
		return merr.WrapErrUnsupportedObject(t.String(), "type already registered as "+old)
	}
	r.byName[name] = t
	r.byType[t] = name
	return nil
}

// MustRegister 与 Register 相同，失败时 panic。
func (r *Registry) MustRegister(name string, sample any) {
	if err := r.Register(name, sample); err != nil {
		panic(err)
	}
}

// Deny 声明 sample 的类型持有无法捕获的资源，序列化遇到它时返回 merr.ErrUnsupportedObject。
func (r *Registry) Deny(sample any) {
	t := reflect.TypeOf(sample)
	if t == nil {
		return
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.denied.Insert(t)
}

// Names 返回所有登记过的名字，按字典序排列。
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := lo.Keys(r.byName)
	r.mu.RUnlock()
	slices.Sort(names)
	return names
}

// Lookup 返回 name 对应的类型。
func (r *Registry) Lookup(name string) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byName[name]
	return t, ok
}

// capturable 检查 t 本身是否可以被捕获，不检查其元素或字段。
func (r *Registry) capturable(t reflect.Type) error {
	switch t.Kind() {
	case reflect.Chan, reflect.Func, reflect.UnsafePointer, reflect.Uintptr,
		reflect.Complex64, reflect.Complex128, reflect.Invalid:
		return merr.WrapErrUnsupportedObject(t.String(), t.Kind().String()+" cannot be captured")
	}
	r.mu.RLock()
	denied := r.denied.Contain(t)
	r.mu.RUnlock()
	if denied {
		return merr.WrapErrUnsupportedObject(t.String(), "holds a resource that cannot be captured")
	}
	return nil
}

// tagOf 返回 t 的类型标签。
func (r *Registry) tagOf(t reflect.Type) (string, error) {
	r.mu.RLock()
	name, ok := r.byType[t]
	r.mu.RUnlock()
	if ok {
		return name, nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		elem, err := r.tagOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "*" + elem, nil
	case reflect.Slice:
		elem, err := r.tagOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case reflect.Map:
		key, err := r.tagOf(t.Key())
		if err != nil {
			return "", err
		}
		if strings.ContainsAny(key, "[]") {
			return "", merr.WrapErrUnsupportedObject(t.String(), "map key type must be a registered name")
		}
		elem, err := r.tagOf(t.Elem())
		if err != nil {
			return "", err
		}
		return "map[" + key + "]" + elem, nil
	}
	return "", merr.WrapErrUnsupportedObject(t.String(), "type is not registered")
}

// resolve 将类型标签解析为类型。
func (r *Registry) resolve(tag string) (reflect.Type, error) {
	switch {
	case strings.HasPrefix(tag, "*"):
		elem, err := r.resolve(tag[1:])
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case strings.HasPrefix(tag, "[]"):
		elem, err := r.resolve(tag[2:])
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case strings.HasPrefix(tag, "map["):
		end := strings.IndexByte(tag, ']')
		if end < 0 {
			return nil, merr.WrapErrUnsupportedObject(tag, "malformed type tag")
		}
		key, err := r.resolve(tag[4:end])
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, merr.WrapErrUnsupportedObject(tag, "map key is not comparable")
		}
		elem, err := r.resolve(tag[end+1:])
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, elem), nil
	}
	t, ok := r.Lookup(tag)
	if !ok {
		return nil, merr.WrapErrUnsupportedObject(tag, "type is not registered")
	}
	return t, nil
}

// opaque 报告结构体 t 是否只有未导出字段，这类值无法按字段捕获。
func (r *Registry) opaque(t reflect.Type) bool {
	return len(r.layout(t)) == 0 && slices.ContainsFunc(reflect.VisibleFields(t), func(f reflect.StructField) bool {
		return !f.IsExported()
	})
}

// layout 返回结构体 t 参与序列化的字段，结果按类型缓存。
// 同名字段只保留第一个。
func (r *Registry) layout(t reflect.Type) []fieldInfo {
	if cached, ok := r.layouts.Load(t); ok {
		return cached.([]fieldInfo)
	}
	fields := make([]fieldInfo, 0, t.NumField())
	seen := typeutil.NewSet[string]()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := f.Name
		if tag, ok := f.Tag.Lookup("objgraph"); ok {
			tag, _, _ = strings.Cut(tag, ",")
			if tag == "-" {
				continue
			}
			if tag != "" {
				name = tag
			}
		}
		if seen.Contain(name) {
			continue
		}
		seen.Insert(name)
		fields = append(fields, fieldInfo{name: name, index: i})
	}
	actual, _ := r.layouts.LoadOrStore(t, fields)
	return actual.([]fieldInfo)
}
