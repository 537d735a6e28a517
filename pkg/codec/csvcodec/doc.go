// Package csvcodec 在记录集（一组扁平的 value.Map）与 CSV 文本之间转换。
//
// 编码时表头取自第一条记录的键顺序：
//   - 后续记录缺少的列写为空单元格；
//   - 后续记录多出的键被丢弃，并以限流的 Warn 日志报告；
//   - Null 写为空单元格，Bool 写为 True/False，Float 使用 value.FormatFloat；
//   - List 或 Map 值返回 merr.ErrUnsupportedShape。
//
// 解码不做任何类型推断，所有单元格都是 Str，因此往返只保留结构（行、列、顺序），
// 不保留标量类型：Int(5) 往返后为 Str("5")。类型恢复由调用方负责。
//
// 读取接受 \r\n 与 \n 换行，写出使用 \n。空行会被跳过，因此只有一列且值为空的行
// 无法往返。空文件与只有表头的文件都解码为空记录集。
package csvcodec
