package log

import (
	"go.uber.org/zap"
)

const (
	FieldNameModule    = "module"
	FieldNameComponent = "component"
	FieldNameFormat    = "format"
	FieldNamePath      = "path"
)

// FieldModule 返回一个包含模块名的 zap 字段。
func FieldModule(module string) zap.Field {
	return zap.String(FieldNameModule, module)
}

// FieldComponent 返回一个包含组件名的 zap 字段。
func FieldComponent(component string) zap.Field {
	return zap.String(FieldNameComponent, component)
}

// FieldFormat 返回一个包含数据格式名的 zap 字段。
func FieldFormat(format string) zap.Field {
	return zap.String(FieldNameFormat, format)
}

// FieldPath 返回一个包含文件路径的 zap 字段。
func FieldPath(path string) zap.Field {
	return zap.String(FieldNamePath, path)
}

// FieldError 返回错误字段。
// 全局配置关闭详细信息时只输出错误文本，避免 cockroachdb/errors 的完整堆栈刷屏。
func FieldError(err error) zap.Field {
	if err != nil && errorVerboseDisabled() {
		return zap.String("error", err.Error())
	}
	return zap.Error(err)
}
