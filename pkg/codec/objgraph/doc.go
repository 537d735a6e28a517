// Package objgraph 将任意 Go 对象图序列化为不透明的二进制文件，并在之后重建等价的对象。
//
// 文件中的每个节点记录类别与字段值，接口位置与根节点额外记录类型标签，
// 指针按同类型同地址去重，共享引用与环状引用在重建后保持同一对象。
// 只有在 Registry 中登记过的类型才能出现在类型标签中，
// 未登记的类型在序列化时返回 merr.ErrUnsupportedObject，在反序列化时同样返回该错误。
//
// 以下内容无法被捕获，序列化时返回 merr.ErrUnsupportedObject：
// chan、func、unsafe.Pointer、uintptr、复数，以及 *os.File 等持有系统资源的类型。
// 结构体只保存导出字段，可以用 `objgraph:"name"` 重命名或用 `objgraph:"-"` 跳过。
// 切片与 map 不做共享识别，重建后是各自独立的副本。
//
// 安全提示：Deserialize 会按文件内容构造对象，相当于执行文件提供的指令。
// 它不适用于不可信的输入，调用方必须自行保证文件来源可信。
// Registry 将可构造的类型限制在显式登记的范围内，maxBytes 与 maxDepth 限制资源消耗，
// 但这些都不能替代对来源的校验。
//
// 文件格式只供本程序使用，不保证跨语言或跨实现兼容。
package objgraph
