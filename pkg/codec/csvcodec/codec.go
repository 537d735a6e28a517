package csvcodec

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/lk2023060901/danmu-serde-go/internal/codecutil"
	"github.com/lk2023060901/danmu-serde-go/internal/fileio"
	"github.com/lk2023060901/danmu-serde-go/pkg/log"
	"github.com/lk2023060901/danmu-serde-go/pkg/metrics"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/typeutil"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

// Name 为格式名。
const Name = "csv"

const droppedKeysRateGroup = "csvcodec.dropped_keys"

// Codec 是 CSV 编解码器，可并发使用。
type Codec struct {
	log.Binder

	fs    afero.Fs
	comma rune
	crlf  bool
}

// New 创建 Codec。
func New(opts ...Option) *Codec {
	o := &options{comma: ','}
	for _, opt := range opts {
		opt(o)
	}
	return &Codec{
		fs:    fileio.OrOs(o.fs),
		comma: o.comma,
		crlf:  o.crlf,
	}
}

func (c *Codec) Name() string { return Name }

// EncodeRecords 将记录集写入 path，覆盖已有文件。
func (c *Codec) EncodeRecords(records []*value.Map, path string) error {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpEncode, path)
	data, err := c.MarshalRecords(records)
	if err != nil {
		return op.Done(0, err)
	}
	return op.Done(len(data), fileio.AtomicWrite(c.fs, path, data))
}

// DecodeRecords 读取 path，返回所有值均为 Str 的记录集。
func (c *Codec) DecodeRecords(path string) ([]*value.Map, error) {
	op := codecutil.Begin(c.Logger(), Name, metrics.OpDecode, path)
	data, err := fileio.ReadFile(c.fs, path)
	if err != nil {
		return nil, op.Done(0, err)
	}
	records, err := c.unmarshal(path, data)
	return records, op.Done(len(data), err)
}

// Encode 接受 Map 列表形式的记录集，其它形状返回 merr.ErrUnsupportedShape。
func (c *Codec) Encode(v value.Value, path string) error {
	records, err := RecordsOf(v)
	if err != nil {
		return codecutil.Begin(c.Logger(), Name, metrics.OpEncode, path).Done(0, err)
	}
	return c.EncodeRecords(records, path)
}

// Decode 以 Map 列表的形式返回记录集。
func (c *Codec) Decode(path string) (value.Value, error) {
	records, err := c.DecodeRecords(path)
	if err != nil {
		return value.Null(), err
	}
	return FromRecords(records), nil
}

// MarshalRecords 返回记录集的 CSV 文本，空记录集为空文本。
func (c *Codec) MarshalRecords(records []*value.Map) ([]byte, error) {
	if len(records) == 0 {
		return []byte{}, nil
	}
	header := recordKeys(records[0])
	if len(header) == 0 {
		return []byte{}, nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = c.comma
	w.UseCRLF = c.crlf

	if err := c.writeRow(w, &buf, header); err != nil {
		return nil, merr.WrapErrUnsupportedShape("header", value.KindStr.String(), err.Error())
	}

	inHeader := typeutil.NewSet(header...)
	dropped := typeutil.NewSet[string]()
	row := make([]string, len(header))
	for i, rec := range records {
		for j, key := range header {
			row[j] = ""
			if rec == nil {
				continue
			}
			v, ok := rec.Get(key)
			if !ok {
				continue
			}
			text, ok := value.ScalarText(v)
			if !ok {
				return nil, merr.WrapErrUnsupportedShape(fmt.Sprintf("row[%d].%s", i, key), v.Kind().String())
			}
			row[j] = text
		}
		if rec != nil {
			for _, key := range rec.Keys() {
				if !inHeader.Contain(key) {
					dropped.Insert(key)
				}
			}
		}
		if err := c.writeRow(w, &buf, row); err != nil {
			return nil, merr.WrapErrUnsupportedShape(fmt.Sprintf("row[%d]", i), value.KindMap.String(), err.Error())
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, merr.WrapErrUnsupportedShape("$", value.KindList.String(), err.Error())
	}

	if dropped.Len() > 0 {
		c.Logger().WithRateGroup(droppedKeysRateGroup, 1, 10).
			RatedWarn(1, "csv keys absent from header are dropped", zap.Strings("keys", dropped.Collect()))
	}
	return buf.Bytes(), nil
}

// writeRow 写出一行。单列空值写成 `""`，否则读取时会被当作空行跳过。
func (c *Codec) writeRow(w *csv.Writer, buf *bytes.Buffer, row []string) error {
	if len(row) != 1 || row[0] != "" {
		return w.Write(row)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	buf.WriteString(`""`)
	if c.crlf {
		buf.WriteString("\r\n")
	} else {
		buf.WriteByte('\n')
	}
	return nil
}

// UnmarshalRecords 解析 CSV 文本。
func (c *Codec) UnmarshalRecords(data []byte) ([]*value.Map, error) {
	return c.unmarshal("", data)
}

func (c *Codec) unmarshal(path string, data []byte) ([]*value.Map, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = c.comma
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return []*value.Map{}, nil
	}
	if err != nil {
		return nil, merr.WrapErrParseFailure(path, err)
	}

	records := make([]*value.Map, 0)
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, merr.WrapErrParseFailure(path, err)
		}
		if len(row) > len(header) {
			line, _ := r.FieldPos(0)
			return nil, merr.WrapErrParseFailureReason(path, "line %d has %d fields, header has %d", line, len(row), len(header))
		}
		rec := value.NewMap()
		for j, key := range header {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			rec.Set(key, value.Str(cell))
		}
		records = append(records, rec)
	}
	return records, nil
}

// RecordsOf 将 Map 列表形式的 Value 转为记录集。
func RecordsOf(v value.Value) ([]*value.Map, error) {
	items, ok := v.AsList()
	if !ok {
		return nil, merr.WrapErrUnsupportedShape("$", v.Kind().String(), "record set must be a list of maps")
	}
	records := make([]*value.Map, 0, len(items))
	for i, item := range items {
		m, ok := item.AsMap()
		if !ok {
			return nil, merr.WrapErrUnsupportedShape(fmt.Sprintf("row[%d]", i), item.Kind().String(), "record must be a map")
		}
		records = append(records, m)
	}
	return records, nil
}

// FromRecords 将记录集转为 Map 列表形式的 Value。
func FromRecords(records []*value.Map) value.Value {
	items := make([]value.Value, 0, len(records))
	for _, rec := range records {
		if rec == nil {
			rec = value.NewMap()
		}
		items = append(items, value.MapOf(rec))
	}
	return value.List(items...)
}

func recordKeys(m *value.Map) []string {
	if m == nil {
		return nil
	}
	return m.Keys()
}

var defaultCodec = New()

// Encode 使用默认配置把记录集写入 path。
func Encode(records []*value.Map, path string) error {
	return defaultCodec.EncodeRecords(records, path)
}

// Decode 使用默认配置读取 path。
func Decode(path string) ([]*value.Map, error) {
	return defaultCodec.DecodeRecords(path)
}
