package xmlcodec

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

var intPattern = regexp.MustCompile(`^-?[0-9]+$`)

// InferScalar 按以下顺序从叶子文本恢复标量：
//  1. 空文本为 Null；
//  2. 不区分大小写等于 "true" 或 "false" 为 Bool；
//  3. 去掉首尾空白后为可选负号加十进制数字，且在 int64 范围内，为 Int（"007" 为 7）；
//  4. 去掉首尾空白后能解析为浮点数（含指数形式与 inf、nan，不含十六进制形式）为 Float，
//     超出 int64 的整数也落在这里，与 JSON 解码一致；
//  5. 其余为原样的 Str。
func InferScalar(text string) value.Value {
	if text == "" {
		return value.Null()
	}
	switch strings.ToLower(text) {
	case "true":
		return value.Bool(true)
	case "false":
		return value.Bool(false)
	}

	t := strings.TrimSpace(text)
	if intPattern.MatchString(t) {
		if i, err := strconv.ParseInt(t, 10, 64); err == nil {
			return value.Int(i)
		}
	}
	if f, ok := parseFloat(t); ok {
		return value.Float(f)
	}
	return value.Str(text)
}

func parseFloat(t string) (float64, bool) {
	if t == "" || isHex(t) {
		return 0, false
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func isHex(t string) bool {
	t = strings.TrimLeft(t, "+-")
	return len(t) >= 2 && t[0] == '0' && (t[1] == 'x' || t[1] == 'X')
}
