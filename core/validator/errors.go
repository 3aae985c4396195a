package validator

import (
	"errors"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// Errors 一次校验中失败的全部字段
type Errors struct {
	Fields []*FieldError
}

func (e *Errors) Error() string { return messages(e.Fields, "; ") }

// FieldError 单个字段的失败信息，Message 为默认语言的提示
type FieldError struct {
	fe      validator.FieldError
	message string
	trans   map[string]ut.Translator
}

func (f *FieldError) Field() string { return f.fe.Field() }

// Namespace 字段完整路径，如 Config.Backend.Type
func (f *FieldError) Namespace() string { return f.fe.Namespace() }
func (f *FieldError) Tag() string       { return f.fe.Tag() }
func (f *FieldError) Value() any        { return f.fe.Value() }
func (f *FieldError) Message() string   { return f.message }

// Translate 按 lang 渲染提示，lang 未启用时返回默认语言
func (f *FieldError) Translate(lang string) string {
	if t, ok := f.trans[lang]; ok {
		return f.fe.Translate(t)
	}
	return f.message
}

func IsValidationError(err error) bool {
	var e *Errors
	return errors.As(err, &e)
}

// FieldErrors 返回错误链中的字段错误，没有时为 nil
func FieldErrors(err error) []*FieldError {
	var e *Errors
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

func HasFieldError(err error, field string) bool {
	for _, f := range FieldErrors(err) {
		if f.Field() == field {
			return true
		}
	}
	return false
}

// FirstField 返回第一个失败字段的名称和规则，用于诊断元数据
func FirstField(err error) (field, tag string) {
	if fs := FieldErrors(err); len(fs) > 0 {
		return fs[0].Field(), fs[0].Tag()
	}
	return "", ""
}

// ErrorsToString 以 sep 拼接提示，sep 为空时使用 "; "
func ErrorsToString(fields []*FieldError, sep string) string {
	if sep == "" {
		sep = "; "
	}
	return messages(fields, sep)
}
