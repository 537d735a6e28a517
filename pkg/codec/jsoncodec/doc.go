// Package jsoncodec 在 value.Value 与 JSON 文本之间转换。
//
// 这是唯一保证完整往返的编解码器：对任意可表示的 Value v，
// Decode(Encode(v)) 与 v 结构相等。为此：
//   - 对象键按插入顺序写出，解码时按文档顺序保留；
//   - Float 总是带小数部分或指数部分写出，解码时不含 '.'、'e'、'E' 的数字才是 Int；
//   - NaN 与 ±Inf 无法用 JSON 表达，编码时返回 merr.ErrUnsupportedShape。
//
// 输出为 UTF-8、默认紧凑格式，文件末尾不带多余内容。
package jsoncodec
