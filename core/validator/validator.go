// Package validator wraps go-playground/validator with translated error
// messages. Messages are rendered in English by default; every field error
// can also be rendered in any other enabled language.
package validator

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
)

var errNilTarget = errors.New("validator: nil target")

// Validate 进程级校验器，配置加载时使用
var Validate = New()

var registrars = map[string]func(*validator.Validate, ut.Translator) error{
	"en": en_translations.RegisterDefaultTranslations,
	"zh": zh_translations.RegisterDefaultTranslations,
}

// Option 调整 New 创建的校验器
type Option func(*settings)

type settings struct {
	tagName string
	langs   []string
	lang    string
}

// WithTagName 读取 name 而不是 validate 标签
func WithTagName(name string) Option {
	return func(s *settings) { s.tagName = name }
}

// WithTranslator 限定启用的语言，目前支持 en 与 zh
func WithTranslator(langs ...string) Option {
	return func(s *settings) { s.langs = langs }
}

// WithDefaultLanguage 设置 Error() 使用的语言
func WithDefaultLanguage(lang string) Option {
	return func(s *settings) { s.lang = lang }
}

// Validator 校验器。注册自定义规则应在并发使用前完成
type Validator struct {
	engine *validator.Validate
	trans  map[string]ut.Translator
	lang   string
}

func New(opts ...Option) *Validator {
	s := &settings{langs: []string{"en", "zh"}, lang: "en"}
	for _, opt := range opts {
		opt(s)
	}

	v := &Validator{
		engine: validator.New(),
		trans:  make(map[string]ut.Translator, len(s.langs)),
		lang:   s.lang,
	}
	if s.tagName != "" {
		v.engine.SetTagName(s.tagName)
	}

	uni := ut.New(en.New(), en.New(), zh.New())
	for _, lang := range s.langs {
		register, ok := registrars[lang]
		if !ok {
			continue
		}
		t, _ := uni.GetTranslator(lang)
		if err := register(v.engine, t); err != nil {
			continue
		}
		v.trans[lang] = t
	}
	return v
}

// Engine 返回底层 validator，用于注册 TagNameFunc 等高级设置
func (v *Validator) Engine() *validator.Validate {
	return v.engine
}

func (v *Validator) Struct(s any) error {
	if s == nil {
		return errNilTarget
	}
	return v.wrap(v.engine.Struct(s))
}

func (v *Validator) StructCtx(ctx context.Context, s any) error {
	if s == nil {
		return errNilTarget
	}
	return v.wrap(v.engine.StructCtx(ctx, s))
}

func (v *Validator) Var(field any, tag string) error {
	return v.wrap(v.engine.Var(field, tag))
}

// RegisterValidation 注册自定义规则；message 非空时为每种已启用语言注册同一模板，{0} 为字段名
func (v *Validator) RegisterValidation(tag string, fn validator.Func, message string) error {
	if err := v.engine.RegisterValidation(tag, fn); err != nil {
		return err
	}
	if message == "" {
		return nil
	}

	add := func(t ut.Translator) error { return t.Add(tag, message, true) }
	render := func(t ut.Translator, fe validator.FieldError) string {
		if msg, err := t.T(tag, fe.Field()); err == nil {
			return msg
		}
		return fe.Error()
	}
	for _, t := range v.trans {
		if err := v.engine.RegisterTranslation(tag, t, add, render); err != nil {
			return err
		}
	}
	return nil
}

// wrap 把 validator.ValidationErrors 转成 *Errors，其余错误原样返回
func (v *Validator) wrap(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	def, ok := v.trans[v.lang]
	if !ok {
		return err
	}

	out := &Errors{Fields: make([]*FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, &FieldError{fe: fe, message: fe.Translate(def), trans: v.trans})
	}
	return out
}

// messages 拼接各字段的默认语言消息
func messages(fields []*FieldError, sep string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.message)
	}
	return strings.Join(parts, sep)
}
