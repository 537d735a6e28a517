package jsoncodec

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/lk2023060901/danmu-serde-go/internal/json"
	"github.com/lk2023060901/danmu-serde-go/pkg/util/merr"
	"github.com/lk2023060901/danmu-serde-go/pkg/value"
)

func (c *Codec) unmarshal(path string, data []byte) (value.Value, error) {
	// 先整体校验语法与尾部内容，逐个 token 的读取只负责构造 Value。
	if !json.Valid(data) {
		return value.Null(), merr.WrapErrParseFailureReason(path, "malformed json")
	}

	iter := c.api.BorrowIterator(data)
	defer c.api.ReturnIterator(iter)

	v, err := readValue(iter)
	if err != nil {
		return value.Null(), merr.WrapErrParseFailure(path, err)
	}
	if iter.Error != nil {
		return value.Null(), merr.WrapErrParseFailure(path, iter.Error)
	}
	return v, nil
}

func readValue(iter *jsoniter.Iterator) (value.Value, error) {
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return value.Null(), nil
	case jsoniter.BoolValue:
		return value.Bool(iter.ReadBool()), nil
	case jsoniter.NumberValue:
		return parseNumber(string(iter.ReadNumber()))
	case jsoniter.StringValue:
		return value.Str(iter.ReadString()), nil
	case jsoniter.ArrayValue:
		items := make([]value.Value, 0)
		var err error
		iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			var item value.Value
			item, err = readValue(it)
			items = append(items, item)
			return err == nil && it.Error == nil
		})
		if err != nil {
			return value.Null(), err
		}
		return value.List(items...), nil
	case jsoniter.ObjectValue:
		m := value.NewMap()
		var err error
		iter.ReadObjectCB(func(it *jsoniter.Iterator, key string) bool {
			var item value.Value
			item, err = readValue(it)
			m.Set(key, item)
			return err == nil && it.Error == nil
		})
		if err != nil {
			return value.Null(), err
		}
		return value.MapOf(m), nil
	default:
		if iter.Error != nil {
			return value.Null(), iter.Error
		}
		return value.Null(), errors.New("unexpected token")
	}
}

// parseNumber 按字面形式区分 Int 与 Float：
// 不含 '.'、'e'、'E' 且落在 int64 范围内的是 Int，其余为 Float。
func parseNumber(s string) (value.Value, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return value.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return value.Null(), errors.Wrapf(err, "bad number %q", s)
	}
	return value.Float(f), nil
}
