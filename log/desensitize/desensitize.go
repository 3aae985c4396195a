// Package desensitize redacts secrets from formatted log lines before they
// reach the underlying writer.
package desensitize

import (
	"slices"
	"sync"
)

// Hook 按添加顺序依次应用规则，可并发使用
type Hook struct {
	mu    sync.RWMutex
	rules []Rule
}

func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	h.AddRules(rules...)
	return h
}

func (h *Hook) index(name string) int {
	return slices.IndexFunc(h.rules, func(r Rule) bool { return r.Name() == name })
}

// AddRules 同名规则原位替换，新规则追加到末尾
func (h *Hook) AddRules(rules ...Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, rule := range rules {
		if rule == nil {
			continue
		}
		if i := h.index(rule.Name()); i >= 0 {
			h.rules[i] = rule
		} else {
			h.rules = append(h.rules, rule)
		}
	}
}

func (h *Hook) AddContentRule(name, pattern, replacement string) error {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		return err
	}
	h.AddRules(rule)
	return nil
}

func (h *Hook) AddFieldRule(name, field, replacement string) error {
	rule, err := NewFieldRule(name, field, replacement)
	if err != nil {
		return err
	}
	h.AddRules(rule)
	return nil
}

// RemoveRule 返回是否存在该规则
func (h *Hook) RemoveRule(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	i := h.index(name)
	if i < 0 {
		return false
	}
	h.rules = slices.Delete(h.rules, i, i+1)
	return true
}

// Rules 按应用顺序返回规则名
func (h *Hook) Rules() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	names := make([]string, 0, len(h.rules))
	for _, r := range h.rules {
		names = append(names, r.Name())
	}
	return names
}

func (h *Hook) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

func (h *Hook) Desensitize(s string) string {
	if s == "" {
		return s
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, r := range h.rules {
		s = r.Process(s)
	}
	return s
}
