package objgraph

import (
	"reflect"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
)

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("Address", Address{}))
	require.NoError(t, r.Register("Address", &Address{}), "same name and type is a no-op")

	err := r.Register("Address", Link{})
	assert.True(t, errors.Is(err, merr.ErrUnsupportedObject))
	err = r.Register("Addr2", Address{})
	assert.True(t, errors.Is(err, merr.ErrUnsupportedObject))
	err = r.Register("bad[name", Link{})
	assert.True(t, errors.Is(err, merr.ErrUnsupportedObject))
	err = r.Register("ch", make(chan int))
	assert.True(t, errors.Is(err, merr.ErrUnsupportedObject))
	err = r.Register("nil", nil)
	assert.True(t, errors.Is(err, merr.ErrUnsupportedObject))

	assert.Contains(t, r.Names(), "Address")
	assert.Contains(t, r.Names(), "map")
	assert.Panics(t, func() { r.MustRegister("Address", Link{}) })
}

func TestRegistryTags(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("Address", Address{})

	cases := map[string]reflect.Type{
		"Address":             reflect.TypeOf(Address{}),
		"*Address":            reflect.TypeOf(&Address{}),
		"[]*Address":          reflect.TypeOf([]*Address{}),
		"map[string]int":      reflect.TypeOf(map[string]int{}),
		"map[int][]*Address":  reflect.TypeOf(map[int][]*Address{}),
		"bytes":               reflect.TypeOf([]byte{}),
		"list":                reflect.TypeOf([]any{}),
		"map":                 reflect.TypeOf(map[string]any{}),
		"[]map":               reflect.TypeOf([]map[string]any{}),
	}
	for tag, typ := range cases {
		got, err := r.resolve(tag)
		require.NoError(t, err, tag)
		assert.Equal(t, typ, got, tag)

		back, err := r.tagOf(typ)
		require.NoError(t, err, tag)
		assert.Equal(t, tag, back)
	}

	for _, tag := range []string{"Nope", "*Nope", "map[int", "map[list]int"} {
		_, err := r.resolve(tag)
		assert.True(t, errors.Is(err, merr.ErrUnsupportedObject), tag)
	}
	_, err := r.tagOf(reflect.TypeOf(struct{}{}))
	assert.True(t, errors.Is(err, merr.ErrUnsupportedObject))
}

func TestRegistryLayout(t *testing.T) {
	r := NewRegistry()
	layout := r.layout(reflect.TypeOf(Person{}))
	names := make([]string, 0, len(layout))
	for _, f := range layout {
		names = append(names, f.name)
	}
	assert.Equal(t, []string{"Name", "Age", "Tags", "Home", "Work", "Friends", "Extra", "Scores", "Raw", "Grid", "r"}, names)
	assert.Equal(t, layout, r.layout(reflect.TypeOf(Person{})))
}

func TestRegistryOpaque(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.opaque(reflect.TypeOf(Opaque{})))
	assert.False(t, r.opaque(reflect.TypeOf(Person{})))
	assert.False(t, r.opaque(reflect.TypeOf(struct{}{})))

	k, ok := marshalKind(reflect.TypeOf(time.Time{}))
	assert.True(t, ok)
	assert.Equal(t, kindBinary, k)
	_, ok = marshalKind(reflect.TypeOf(Address{}))
	assert.False(t, ok)
	_, ok = marshalKind(reflect.TypeOf([]byte(nil)))
	assert.False(t, ok)
}
