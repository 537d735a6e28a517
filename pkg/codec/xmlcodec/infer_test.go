package xmlcodec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

func TestInferScalar(t *testing.T) {
	cases := []struct {
		text string
		want value.Value
	}{
		{"", value.Null()},
		{"false", value.Bool(false)},
		{"TRUE", value.Bool(true)},
		{"True", value.Bool(true)},
		{"007", value.Int(7)},
		{"-12", value.Int(-12)},
		{" 42 ", value.Int(42)},
		{"3.14", value.Float(3.14)},
		{"1e3", value.Float(1000)},
		{"+5", value.Float(5)},
		{"-0.0", value.Float(math.Copysign(0, -1))},
		{"99999999999999999999", value.Float(1e20)},
		{"-99999999999999999999", value.Float(-1e20)},
		{"9223372036854775807", value.Int(math.MaxInt64)},
		{"9223372036854775808", value.Float(9223372036854775808)},
		{"inf", value.Float(math.Inf(1))},
		{"-Infinity", value.Float(math.Inf(-1))},
		{"hello", value.Str("hello")},
		{"0x1F", value.Str("0x1F")},
		{"-0x1p-2", value.Str("-0x1p-2")},
		{"1_000", value.Str("1_000")},
		{"   ", value.Str("   ")},
		{" true", value.Str(" true")},
		{"12abc", value.Str("12abc")},
	}
	for _, c := range cases {
		got := InferScalar(c.text)
		assert.True(t, value.Equal(c.want, got), "text %q: want %s got %s", c.text, c.want, got)
	}

	nan := InferScalar("nan")
	f, ok := nan.AsFloat()
	assert.True(t, ok)
	assert.True(t, math.IsNaN(f))
}

func TestValidName(t *testing.T) {
	for _, s := range []string{"a", "_x", "名字", "a-b.c1"} {
		assert.True(t, validName(s), s)
	}
	for _, s := range []string{"", "1a", "-a", "a b", "a:b", "a<", "\xff"} {
		assert.False(t, validName(s), s)
	}
}

func TestValidText(t *testing.T) {
	assert.True(t, validText("tab\tnewline\n雪"))
	assert.False(t, validText("nul\x00"))
	assert.False(t, validText("\xff"))
}
