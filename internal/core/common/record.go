package common

import (
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// StringValue returns the string stored under key in rec.
func StringValue(rec *neo4j.Record, key string) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("nil record")
	}
	v, ok := rec.Get(key)
	if !ok {
		return "", fmt.Errorf("column %q missing", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("column %q: expected string, got %T", key, v)
	}
	return s, nil
}

// MapValue returns the property map stored under key in rec.
func MapValue(rec *neo4j.Record, key string) (map[string]any, error) {
	if rec == nil {
		return nil, fmt.Errorf("nil record")
	}
	v, ok := rec.Get(key)
	if !ok {
		return nil, fmt.Errorf("column %q missing", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("column %q: expected map, got %T", key, v)
	}
	return m, nil
}
