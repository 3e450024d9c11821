// Package store holds the portfolio key-value store: a flat map from string
// keys to JSON documents, with memory, database and redis backends.
package store

import (
	"context"
	"errors"
	"sort"
)

// Reserved keys. The names are shared with exported backup files and must not change.
const (
	KeyColleges       = "colleges"
	KeyAnnouncements  = "announcements"
	KeySettings       = "settings"
	KeyCustomModules  = "customModules"
	KeyCustomTheme    = "customTheme"
	KeyCollegeInfo    = "collegeInfo"
	KeyLastBackupTime = "lastBackupTime"
)

var (
	// ErrMalformed wraps a decode failure of a stored value.
	ErrMalformed = errors.New("malformed stored value")
	ErrEmptyKey  = errors.New("store key must not be empty")
)

// Store is a flat string-to-string map. Writes replace the whole value;
// concurrent writers to one key race and the last write wins.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

// Snapshot copies every key and raw value out of s.
func Snapshot(ctx context.Context, s Store) (map[string]string, error) {
	keys, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		v, ok, err := s.Get(ctx, k)
		if err != nil {
			return nil, err
		}
		if ok {
			out[k] = v
		}
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
