package desensitize

import (
	"io"
)

// Writer 包装 writer 以支持脱敏
type Writer struct {
	writer io.Writer
	hook   *Hook
}

// NewWriter 创建脱敏 writer
func NewWriter(w io.Writer, hook *Hook) *Writer {
	if w == nil {
		panic("desensitize: writer cannot be nil")
	}
	if hook == nil {
		panic("desensitize: hook cannot be nil")
	}
	return &Writer{writer: w, hook: hook}
}

// Write 实现 io.Writer。成功时返回 len(p)，即使脱敏后长度发生变化
func (w *Writer) Write(p []byte) (int, error) {
	if len(p) == 0 || w.hook.Len() == 0 {
		return w.writer.Write(p)
	}

	text := string(p)
	out := w.hook.Desensitize(text)
	if out == text {
		return w.writer.Write(p)
	}

	if _, err := io.WriteString(w.writer, out); err != nil {
		return 0, err
	}
	return len(p), nil
}
