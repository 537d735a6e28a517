package value

import (
	"math"
	"strconv"
	"strings"
)

const (
	TrueText  = "True"
	FalseText = "False"
)

// FormatFloat 返回 Float 的规范文本形式。
//
// 结果总是带有小数部分或指数部分（1.0、1e+21），
// 保证按数字语法解析时不会被当成整数；非有限值输出 inf、-inf、nan。
func FormatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if format == 'e' {
		// 与 encoding/json 一致，把 e-07 规整为 e-7。
		n := len(s)
		if n >= 4 && s[n-4] == 'e' && s[n-3] == '-' && s[n-2] == '0' {
			s = s[:n-2] + s[n-1:]
		}
		return s
	}
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// ScalarText 返回标量的规范文本形式，供表格与标记格式使用。
//
//   - Null  -> ""
//   - Bool  -> "True" / "False"
//   - Int   -> 十进制
//   - Float -> FormatFloat
//   - Str   -> 原文
//
// 非标量返回 ok=false。
func ScalarText(v Value) (string, bool) {
	switch v.kind {
	case KindNull:
		return "", true
	case KindBool:
		if v.b {
			return TrueText, true
		}
		return FalseText, true
	case KindInt:
		return strconv.FormatInt(v.i, 10), true
	case KindFloat:
		return FormatFloat(v.f), true
	case KindStr:
		return v.s, true
	default:
		return "", false
	}
}
