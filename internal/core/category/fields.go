package category

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMissingField = errors.New("required property missing")

// Fields decodes the property map of one related node. Problems with
// required properties fail the decode; problems with optional properties are
// recorded in Warnings and the property is treated as absent.
type Fields struct {
	props    map[string]any
	Warnings []error
}

func NewFields(props map[string]any) *Fields {
	return &Fields{props: props}
}

func (f *Fields) Required(key string) (string, error) {
	v, ok := f.props[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("property %q: expected string, got %T", key, v)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingField, key)
	}
	return s, nil
}

// Optional returns nil when key is absent, blank, or not a string.
func (f *Fields) Optional(key string) *string {
	s, ok := f.optional(key)
	if !ok {
		return nil
	}
	return &s
}

func (f *Fields) optional(key string) (string, bool) {
	v, ok := f.props[key]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		f.Warnings = append(f.Warnings, fmt.Errorf("property %q: expected string, got %T", key, v))
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Ordinal parses an optional ordinal property. Unknown values yield the zero
// (unspecified) level and a warning.
func Ordinal[T any](f *Fields, key string, parse func(string) (T, error)) T {
	var zero T
	s, ok := f.optional(key)
	if !ok {
		return zero
	}
	v, err := parse(s)
	if err != nil {
		f.Warnings = append(f.Warnings, err)
		return zero
	}
	return v
}
