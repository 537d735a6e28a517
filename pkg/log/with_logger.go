package log

import "go.uber.org/atomic"

var (
	_ WithLogger   = &Binder{}
	_ LoggerBinder = &Binder{}
)

// WithLogger 是一个用于访问组件 Logger 的接口。
type WithLogger interface {
	Logger() *MLogger
}

// LoggerBinder 是一个用于注入 Logger 的接口。
type LoggerBinder interface {
	SetLogger(logger *MLogger)
}

// Binder 嵌入到编解码器等组件中，统一管理组件自己的 Logger。
type Binder struct {
	logger atomic.Pointer[MLogger]
}

// SetLogger 将 Logger 绑定到 Binder 上，传入 nil 表示恢复为全局 Logger。
func (w *Binder) SetLogger(logger *MLogger) {
	w.logger.Store(logger)
}

// Logger 返回当前绑定的 Logger，未绑定时退回到全局 Logger。
func (w *Binder) Logger() *MLogger {
	l := w.logger.Load()
	if l == nil {
		return With()
	}
	return l
}
