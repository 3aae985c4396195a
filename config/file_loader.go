package config

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/kochabx/sealstore/core/tag"
	"github.com/kochabx/sealstore/core/validator"
	"github.com/kochabx/sealstore/errors"
)

// EnvPrefix is prepended to every environment override, e.g.
// SEALSTORE_STORE_TYPE overrides store.type.
const EnvPrefix = "SEALSTORE"

// FileLoader reads one file, with SEALSTORE_* variables taking precedence.
type FileLoader struct {
	viper    *viper.Viper
	validate *validator.Validator
	path     string
}

// NewFileLoader configures v for path; the format follows the extension.
func NewFileLoader(path string, v *viper.Viper, validate *validator.Validator) *FileLoader {
	v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		v.SetConfigType(ext)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &FileLoader{
		viper:    v,
		validate: validate,
		path:     path,
	}
}

// Load applies `default` tags first so keys absent from the file keep them.
func (l *FileLoader) Load(target any) error {
	if err := tag.ApplyDefaults(target); err != nil {
		return errors.Wrap(err, errors.CodeInvalidArgument, "config defaults")
	}

	if err := l.viper.ReadInConfig(); err != nil {
		return errors.WrapWithMetadata(err, errors.CodeInvalidArgument,
			map[string]string{"path": l.path}, "read config file")
	}

	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := l.viper.Unmarshal(target, hook); err != nil {
		return errors.Wrap(err, errors.CodeInvalidArgument, "decode config")
	}

	if l.validate != nil {
		if err := l.validate.Struct(target); err != nil {
			return errors.Wrap(err, errors.CodeInvalidArgument, "invalid config")
		}
	}

	return nil
}

// Watch calls changed on writes to, or re-creation of, the file.
func (l *FileLoader) Watch(changed func()) error {
	l.viper.OnConfigChange(func(e fsnotify.Event) {
		if changed != nil && e.Has(fsnotify.Write|fsnotify.Create) {
			changed()
		}
	})

	l.viper.WatchConfig()
	return nil
}
