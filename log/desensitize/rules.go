package desensitize

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrEmptyRuleName = errors.New("desensitize: empty rule name")
	ErrEmptyPattern  = errors.New("desensitize: empty pattern")
)

// Rule 对一行日志做替换，Name 在同一 Hook 中唯一
type Rule interface {
	Name() string
	Process(s string) string
}

// PatternRule 按正则替换。内容规则的 replacement 支持 $1 等引用，字段规则按字面量替换
type PatternRule struct {
	name    string
	re      *regexp.Regexp
	repl    string
	literal bool
}

// NewContentRule 替换任意位置匹配 pattern 的内容
func NewContentRule(name, pattern, replacement string) (*PatternRule, error) {
	if pattern == "" {
		return nil, ErrEmptyPattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("desensitize: rule %s: %w", name, err)
	}
	return newPatternRule(name, re, replacement, false)
}

// NewFieldRule 把 JSON 中 "field":"..." 的值整体替换为 replacement
func NewFieldRule(name, field, replacement string) (*PatternRule, error) {
	if field == "" {
		return nil, ErrEmptyPattern
	}
	re := regexp.MustCompile(`"` + regexp.QuoteMeta(field) + `"\s*:\s*"(?:[^"\\]|\\.)*"`)
	return newPatternRule(name, re, `"`+field+`":"`+replacement+`"`, true)
}

func newPatternRule(name string, re *regexp.Regexp, repl string, literal bool) (*PatternRule, error) {
	if name == "" {
		return nil, ErrEmptyRuleName
	}
	return &PatternRule{name: name, re: re, repl: repl, literal: literal}, nil
}

// MustNewContentRule 用于包级变量，出错时 panic
func MustNewContentRule(name, pattern, replacement string) *PatternRule {
	return must(NewContentRule(name, pattern, replacement))
}

func MustNewFieldRule(name, field, replacement string) *PatternRule {
	return must(NewFieldRule(name, field, replacement))
}

func must(r *PatternRule, err error) *PatternRule {
	if err != nil {
		panic(err)
	}
	return r
}

func (r *PatternRule) Name() string { return r.name }

func (r *PatternRule) Process(s string) string {
	if r.literal {
		return r.re.ReplaceAllLiteralString(s, r.repl)
	}
	return r.re.ReplaceAllString(s, r.repl)
}
