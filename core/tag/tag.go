// Package tag fills struct fields from `default:"..."` struct tags.
package tag

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	ErrTargetMustBePointer = errors.New("tag: target must be a pointer to struct")
	ErrTargetIsNil         = errors.New("tag: nil target")
	ErrUnsupportedType     = errors.New("tag: unsupported field type")
	ErrMaxDepthExceeded    = errors.New("tag: nesting too deep")
)

// FieldError names the field whose default could not be parsed.
type FieldError struct {
	Path  string
	Kind  reflect.Kind
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("tag: %s (%s) = %q: %v", e.Path, e.Kind, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

// Option tunes ApplyDefaults.
type Option func(*walker)

// WithTagName reads name instead of "default".
func WithTagName(name string) Option {
	return func(w *walker) { w.tagName = name }
}

// WithMaxDepth bounds recursion into nested structs. The default is 16.
func WithMaxDepth(depth int) Option {
	return func(w *walker) { w.maxDepth = depth }
}

// WithSeparator splits slice defaults on sep instead of ",".
func WithSeparator(sep string) Option {
	return func(w *walker) { w.separator = sep }
}

var (
	durationType = reflect.TypeFor[time.Duration]()
	textType     = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// ApplyDefaults fills zero-valued fields of the struct pointed to by target
// from their `default:"..."` tags. Nested structs and pointers to structs are
// walked; fields that already hold a value are left alone.
//
//	type FileConfig struct {
//	    Root string `default:"./data"`
//	    Mode uint32 `default:"448"`
//	}
func ApplyDefaults(target any, opts ...Option) error {
	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if v.IsNil() {
		return ErrTargetIsNil
	}
	if v.Elem().Kind() != reflect.Struct {
		return ErrTargetMustBePointer
	}

	w := &walker{tagName: "default", maxDepth: 16, separator: ","}
	for _, opt := range opts {
		opt(w)
	}
	return w.walk(v.Elem(), "", 0)
}

type walker struct {
	tagName   string
	maxDepth  int
	separator string
}

func (w *walker) walk(v reflect.Value, prefix string, depth int) error {
	if depth >= w.maxDepth {
		return ErrMaxDepthExceeded
	}

	t := v.Type()
	for i := range t.NumField() {
		sf := t.Field(i)
		fv := v.Field(i)
		if !fv.CanSet() {
			continue
		}

		path := sf.Name
		if prefix != "" {
			path = prefix + "." + sf.Name
		}

		if err := w.field(fv, sf.Tag.Get(w.tagName), path, depth); err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) field(fv reflect.Value, def, path string, depth int) error {
	switch {
	case fv.Kind() == reflect.Struct && !fv.Type().Implements(textType) && !reflect.PointerTo(fv.Type()).Implements(textType):
		return w.walk(fv, path, depth+1)

	case fv.Kind() == reflect.Pointer && fv.Type().Elem().Kind() == reflect.Struct:
		if fv.IsNil() {
			fv.Set(reflect.New(fv.Type().Elem()))
		}
		return w.walk(fv.Elem(), path, depth+1)
	}

	if def == "" || !fv.IsZero() {
		return nil
	}

	if fv.Kind() == reflect.Pointer {
		nv := reflect.New(fv.Type().Elem())
		if err := w.set(nv.Elem(), def); err != nil {
			return &FieldError{Path: path, Kind: fv.Kind(), Value: def, Err: err}
		}
		fv.Set(nv)
		return nil
	}

	if err := w.set(fv, def); err != nil {
		return &FieldError{Path: path, Kind: fv.Kind(), Value: def, Err: err}
	}
	return nil
}

func (w *walker) set(v reflect.Value, s string) error {
	if v.CanAddr() {
		if u, ok := v.Addr().Interface().(encoding.TextUnmarshaler); ok {
			return u.UnmarshalText([]byte(s))
		}
	}

	switch v.Kind() {
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			v.SetBytes([]byte(s))
			return nil
		}
		parts := strings.Split(s, w.separator)
		slice := reflect.MakeSlice(v.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := setScalar(slice.Index(i), strings.TrimSpace(p)); err != nil {
				return err
			}
		}
		v.Set(slice)
		return nil
	default:
		return setScalar(v, strings.TrimSpace(s))
	}
}

func setScalar(v reflect.Value, s string) error {
	switch v.Kind() {
	case reflect.String:
		v.SetString(s)
	case reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		v.SetBool(b)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if v.Type() == durationType {
			d, err := time.ParseDuration(s)
			if err != nil {
				return err
			}
			v.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(s, 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 0, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, v.Type().Bits())
		if err != nil {
			return err
		}
		v.SetFloat(f)
	default:
		return ErrUnsupportedType
	}
	return nil
}
