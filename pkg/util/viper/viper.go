package viper

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	spfviper "github.com/spf13/viper"
)

// Config 封装 spf13/viper 实例，对外提供精简的 YAML/JSON 配置加载接口。
type Config struct {
	v *spfviper.Viper
}

// New 创建一个空的 Config。
// 未加载任何文件时，Unmarshal 只会得到默认值。
func New() *Config {
	return &Config{
		v: spfviper.New(),
	}
}

// NewWithFs 创建一个从 fs 读取配置文件的 Config，测试中通常传入 afero.NewMemMapFs()。
func NewWithFs(fs afero.Fs) *Config {
	c := New()
	c.v.SetFs(fs)
	return c
}

// LoadFile 将 YAML 或 JSON 配置文件加载到 Config 中。
// 文件类型通过扩展名（.yaml/.yml/.json）推断。
func (c *Config) LoadFile(path string) error {
	c.v.SetConfigFile(path)
	if typ := typeOf(path); typ != "" {
		c.v.SetConfigType(typ)
	}
	return c.v.ReadInConfig()
}

// LoadBytes 从内存中的 YAML/JSON 内容加载配置，typ 为 "yaml" 或 "json"。
func (c *Config) LoadBytes(typ string, data []byte) error {
	c.v.SetConfigType(typ)
	return c.v.ReadConfig(bytes.NewReader(data))
}

// SetDefault 设置 key 的默认值，配置文件中未出现的 key 使用该值。
func (c *Config) SetDefault(key string, value any) {
	c.v.SetDefault(key, value)
}

// IsSet 判断 key 是否在配置文件或默认值中出现过。
func (c *Config) IsSet(key string) bool {
	return c.v.IsSet(key)
}

// Unmarshal 将完整配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) Unmarshal(dst any) error {
	return c.v.Unmarshal(dst)
}

// UnmarshalKey 将指定 key 对应的子配置反序列化到 dst。
// dst 应为结构体或 map 的指针。
func (c *Config) UnmarshalKey(key string, dst any) error {
	return c.v.UnmarshalKey(key, dst)
}

func typeOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".json":
		return "json"
	default:
		// 让 viper 自行推断类型，或在读取时返回清晰的错误信息。
		return ""
	}
}
