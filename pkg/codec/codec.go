// Package codec 汇总了值模型的各个文本编解码器，并按格式名创建它们。
//
// 具体格式见子包：jsoncodec（层级文本）、csvcodec（表格）、xmlcodec（标记），
// 以及不经过值模型的对象图编解码器 objgraph。
package codec

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/lk2023060901/danmu-serde-go/internal/serializer"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/csvcodec"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/jsoncodec"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/objgraph"
	"github.com/lk2023060901/danmu-serde-go/pkg/codec/xmlcodec"
	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/paramtable"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

// ValueCodec 在文件与 value.Value 之间转换。
type ValueCodec interface {
	log.WithLogger
	log.LoggerBinder

	// Name 返回格式名。
	Name() string
	// Encode 将 v 写入 path，失败时 path 不会被创建或改动。
	Encode(v value.Value, path string) error
	// Decode 读取 path 并返回其中的值。
	Decode(path string) (value.Value, error)
}

var (
	_ ValueCodec = (*jsoncodec.Codec)(nil)
	_ ValueCodec = (*csvcodec.Codec)(nil)
	_ ValueCodec = (*xmlcodec.Codec)(nil)
)

// Format 为值编解码器的格式名。
type Format string

const (
	FormatJSON Format = jsoncodec.Name
	FormatCSV  Format = csvcodec.Name
	FormatXML  Format = xmlcodec.Name
)

// ErrUnknownFormat 表示无法识别的格式名。
var ErrUnknownFormat = errors.New("codec: unknown format")

// Formats 返回所有支持的格式。
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatXML}
}

// ParseFormat 解析格式名，不区分大小写。
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case FormatJSON, FormatCSV, FormatXML:
		return f, nil
	}
	return "", errors.Wrapf(ErrUnknownFormat, "name=%q", name)
}

// FormatOfPath 根据扩展名推断格式。
func FormatOfPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", errors.Wrapf(ErrUnknownFormat, "path %q has no extension", path)
	}
	return ParseFormat(ext)
}

// Open 按 cfg 创建 format 对应的编解码器。
// cfg 为 nil 时使用默认参数，fs 为 nil 时使用本地文件系统。
func Open(format Format, cfg *paramtable.Config, fs afero.Fs) (ValueCodec, error) {
	if cfg == nil {
		cfg = paramtable.Default()
	}
	switch format {
	case FormatJSON:
		return jsoncodec.New(
			jsoncodec.WithFs(fs),
			jsoncodec.WithIndent(cfg.JSON.Indent),
		), nil
	case FormatCSV:
		return csvcodec.New(
			csvcodec.WithFs(fs),
			csvcodec.WithDelimiter(cfg.CSV.Comma()),
			csvcodec.WithCRLF(cfg.CSV.CRLF),
		), nil
	case FormatXML:
		return xmlcodec.New(
			xmlcodec.WithFs(fs),
			xmlcodec.WithRoot(cfg.XML.Root),
			xmlcodec.WithIndent(cfg.XML.Indent),
			xmlcodec.WithDeclaration(cfg.XML.Declaration),
		), nil
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "format=%q", string(format))
}

// OpenObjGraph 按 cfg 创建对象图编解码器，reg 为 nil 时使用 objgraph.DefaultRegistry。
func OpenObjGraph(reg *objgraph.Registry, cfg *paramtable.Config, fs afero.Fs) (*objgraph.Codec, error) {
	if cfg == nil {
		cfg = paramtable.Default()
	}
	format, err := serializer.ParseFormat(cfg.ObjGraph.Format)
	if err != nil {
		return nil, err
	}
	s, err := serializer.ByFormat(format)
	if err != nil {
		return nil, err
	}
	return objgraph.New(reg,
		objgraph.WithFs(fs),
		objgraph.WithSerializer(s),
		objgraph.WithMaxBytes(cfg.ObjGraph.MaxBytes),
		objgraph.WithMaxDepth(cfg.ObjGraph.MaxDepth),
	), nil
}
