package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Read decodes the JSON value under key into T. A missing key yields the zero
// value and false.
func Read[T any](ctx context.Context, s Store, key string) (T, bool, error) {
	var out T
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return out, true, fmt.Errorf("%w: key %q: %v", ErrMalformed, key, err)
	}
	return out, true, nil
}

// ReadOrDefault is Read with def substituted for a missing key.
func ReadOrDefault[T any](ctx context.Context, s Store, key string, def T) (T, error) {
	v, ok, err := Read[T](ctx, s, key)
	if err != nil {
		return def, err
	}
	if !ok {
		return def, nil
	}
	return v, nil
}

// Write serializes v and stores it under key, replacing any previous value.
func Write(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
