// Package json 是项目内统一使用的 JSON 入口，底层为 bytedance/sonic。
package json

import (
	"github.com/bytedance/sonic"
)

var api = sonic.ConfigStd

// Marshal 按标准库兼容的规则编码 v。
func Marshal(v any) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalIndent 编码 v 并按 indent 缩进。
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	return api.MarshalIndent(v, prefix, indent)
}

// Unmarshal 将 data 解码到 v。
func Unmarshal(data []byte, v any) error {
	return api.Unmarshal(data, v)
}

// Valid 判断 data 是否为一个完整的 JSON 值，末尾不允许有空白以外的内容。
func Valid(data []byte) bool {
	return api.Valid(data)
}
