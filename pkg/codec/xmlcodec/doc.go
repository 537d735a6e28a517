// Package xmlcodec 在扁平的 value.Map 与 XML 文本之间转换。
//
// 文档结构固定为一个根元素（默认 <data>），每个键对应一个子元素，子元素只含文本：
//
//	<?xml version="1.0" encoding="UTF-8"?>
//	<data><id>7</id><name>Alice</name><vip>True</vip><note></note></data>
//
// 只支持一层：值为 List 或 Map 时编码返回 merr.ErrUnsupportedShape。
// 文本不携带类型信息，解码由 InferScalar 按固定顺序恢复标量类型，
// 因此 Str("42") 往返后为 Int(42)，Str("True") 往返后为 Bool(true)，
// Str("") 往返后为 Null。这是格式本身的限制，调用方需要自行处理。
package xmlcodec
