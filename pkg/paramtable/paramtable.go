// Package paramtable 定义各编解码器的可配置参数，并从 YAML/JSON 配置中加载。
package paramtable

import (
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/danmu-serde-go/internal/serializer"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/csvcodec"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/objgraph"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/xmlcodec"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/viper"
)

// JSONConfig 为层级文本编解码器的参数。
type JSONConfig struct {
	// Indent 为缩进空格数，0 表示紧凑输出。
	Indent int `mapstructure:"indent" json:"indent"`
}

// CSVConfig 为表格编解码器的参数。
type CSVConfig struct {
	// Delimiter 为单个字符的分隔符。
	Delimiter string `mapstructure:"delimiter" json:"delimiter"`
	// CRLF 表示写出时使用 \r\n 换行。
	CRLF bool `mapstructure:"crlf" json:"crlf"`
}

// Comma 返回分隔符对应的 rune，配置非法时返回逗号。
func (c CSVConfig) Comma() rune {
	r, size := utf8.DecodeRuneInString(c.Delimiter)
	if size == 0 || size != len(c.Delimiter) || !csvcodec.ValidDelimiter(r) {
		return ','
	}
	return r
}

// XMLConfig 为标记编解码器的参数。
type XMLConfig struct {
	Root        string `mapstructure:"root" json:"root"`
	Indent      int    `mapstructure:"indent" json:"indent"`
	Declaration bool   `mapstructure:"declaration" json:"declaration"`
}

// ObjGraphConfig 为对象图编解码器的参数。
type ObjGraphConfig struct {
	// Format 为写出时的负载格式，cbor 或 json。
	Format   string `mapstructure:"format" json:"format"`
	MaxBytes int64  `mapstructure:"maxbytes" json:"maxBytes"`
	MaxDepth int    `mapstructure:"maxdepth" json:"maxDepth"`
}

// ConvertConfig 为批量转换的参数。
type ConvertConfig struct {
	// Workers 为并发转换数，0 表示使用 GOMAXPROCS。
	Workers int `mapstructure:"workers" json:"workers"`
	// NonBlocking 为 true 时，worker 全忙的任务直接失败而不是排队等待。
	NonBlocking bool `mapstructure:"nonblocking" json:"nonBlocking"`
	// Expiry 为空闲 worker 的回收间隔，0 表示使用协程池默认值。
	Expiry time.Duration `mapstructure:"expiry" json:"expiry"`
}

// Config 汇总所有参数。
type Config struct {
	JSON     JSONConfig     `mapstructure:"json" json:"json"`
	CSV      CSVConfig      `mapstructure:"csv" json:"csv"`
	XML      XMLConfig      `mapstructure:"xml" json:"xml"`
	ObjGraph ObjGraphConfig `mapstructure:"objgraph" json:"objgraph"`
	Convert  ConvertConfig  `mapstructure:"convert" json:"convert"`
}

// Default 返回默认参数。
func Default() *Config {
	return &Config{
		CSV: CSVConfig{Delimiter: ","},
		XML: XMLConfig{Root: xmlcodec.DefaultRoot, Declaration: true},
		ObjGraph: ObjGraphConfig{
			Format:   "cbor",
			MaxBytes: objgraph.DefaultMaxBytes,
			MaxDepth: objgraph.DefaultMaxDepth,
		},
	}
}

var defaults = map[string]any{
	"json.indent":         0,
	"csv.delimiter":       ",",
	"csv.crlf":            false,
	"xml.root":            xmlcodec.DefaultRoot,
	"xml.indent":          0,
	"xml.declaration":     true,
	"objgraph.format":     "cbor",
	"objgraph.maxbytes":   objgraph.DefaultMaxBytes,
	"objgraph.maxdepth":   objgraph.DefaultMaxDepth,
	"convert.workers":     0,
	"convert.nonblocking": false,
	"convert.expiry":      time.Duration(0),
}

// SetDefaults 将默认参数登记到 cfg，已加载的配置项不受影响。
func SetDefaults(cfg *viper.Config) {
	for k, v := range defaults {
		cfg.SetDefault(k, v)
	}
}

// Load 从 cfg 读取参数并校验，cfg 为 nil 时返回默认参数。
func Load(cfg *viper.Config) (*Config, error) {
	c := Default()
	if cfg == nil {
		return c, nil
	}
	SetDefaults(cfg)
	if err := cfg.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "unmarshal params")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate 检查参数，返回所有非法项合并后的错误。
func (c *Config) Validate() error {
	var errs []error

	if c.JSON.Indent < 0 {
		errs = append(errs, errors.Newf("json.indent must not be negative, got %d", c.JSON.Indent))
	}
	if r, size := utf8.DecodeRuneInString(c.CSV.Delimiter); size == 0 || size != len(c.CSV.Delimiter) || !csvcodec.ValidDelimiter(r) {
		errs = append(errs, errors.Newf("csv.delimiter must be a single valid character, got %q", c.CSV.Delimiter))
	}
	if !xmlcodec.ValidRoot(c.XML.Root) {
		errs = append(errs, errors.Newf("xml.root %q is not a valid element name", c.XML.Root))
	}
	if c.XML.Indent < 0 {
		errs = append(errs, errors.Newf("xml.indent must not be negative, got %d", c.XML.Indent))
	}
	if _, err := serializer.ParseFormat(c.ObjGraph.Format); err != nil {
		errs = append(errs, errors.Wrap(err, "objgraph.format"))
	}
	if c.ObjGraph.MaxBytes <= 0 {
		errs = append(errs, errors.Newf("objgraph.maxBytes must be positive, got %d", c.ObjGraph.MaxBytes))
	}
	if c.ObjGraph.MaxDepth <= 0 {
		errs = append(errs, errors.Newf("objgraph.maxDepth must be positive, got %d", c.ObjGraph.MaxDepth))
	}
	if c.Convert.Workers < 0 {
		errs = append(errs, errors.Newf("convert.workers must not be negative, got %d", c.Convert.Workers))
	}
	if c.Convert.Expiry < 0 {
		errs = append(errs, errors.Newf("convert.expiry must not be negative, got %s", c.Convert.Expiry))
	}
	return merr.Combine(errs...)
}

