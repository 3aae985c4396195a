// Package config loads the sealstore configuration file into a caller owned
// struct, layering struct-tag defaults, the file and SEALSTORE_* environment
// variables, then validating the result.
package config

import (
	"sync"

	"github.com/spf13/viper"

	"github.com/kochabx/sealstore/core/validator"
	"github.com/kochabx/sealstore/log"
)

// DefaultPath is read when WithPath is not given.
const DefaultPath = "sealstore.yaml"

// Loader fills target from some source and reports later changes.
type Loader interface {
	Load(target any) error
	Watch(changed func()) error
}

// Option configures New.
type Option func(*Config)

// WithPath selects the file read by the default FileLoader.
func WithPath(path string) Option {
	return func(c *Config) { c.path = path }
}

// WithLoader replaces the FileLoader.
func WithLoader(l Loader) Option {
	return func(c *Config) { c.loader = l }
}

// WithOnChange registers fn to run after every successful Reload.
func WithOnChange(fn func()) Option {
	return func(c *Config) {
		if fn != nil {
			c.onChange = append(c.onChange, fn)
		}
	}
}

// Config guards target while it is (re)loaded.
type Config struct {
	mu       sync.RWMutex
	target   any
	path     string
	loader   Loader
	onChange []func()
}

func New(target any, opts ...Option) *Config {
	c := &Config{target: target, path: DefaultPath}
	for _, opt := range opts {
		opt(c)
	}
	if c.loader == nil {
		c.loader = NewFileLoader(c.path, viper.New(), validator.Validate)
	}
	return c
}

func (c *Config) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loader.Load(c.target)
}

// Reload is Load followed by the OnChange callbacks. Callbacks run outside
// the lock and are skipped when loading fails.
func (c *Config) Reload() error {
	if err := c.Load(); err != nil {
		return err
	}
	for _, fn := range c.onChange {
		fn()
	}
	return nil
}

// Read calls fn with target while holding the read lock.
func (c *Config) Read(fn func(target any)) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	fn(c.target)
}

// Watch reloads on every change the loader reports. Failed reloads are
// logged, not returned.
func (c *Config) Watch() error {
	return c.loader.Watch(func() {
		if err := c.Reload(); err != nil {
			log.Error().Err(err).Msg("config reload failed")
			return
		}
		log.Info().Msg("config reloaded")
	})
}
