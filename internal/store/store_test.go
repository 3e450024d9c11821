package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDBStore(t *testing.T) *DBStore {
	t.Helper()
	db, err := models.Open(&config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"}, gormlogger.Silent)
	require.NoError(t, err)
	require.NoError(t, models.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return NewDBStore(db)
}

func newTestRedisStore(t *testing.T) (*RedisStore, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStoreWithClient(client, "portfolio:"), client
}

// backends runs the same behaviour checks against every backend.
func backends(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory":   func(t *testing.T) Store { return NewMemoryStore() },
		"database": func(t *testing.T) Store { return newTestDBStore(t) },
		"redis": func(t *testing.T) Store {
			s, _ := newTestRedisStore(t)
			return s
		},
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := open(t)
			v, ok, err := s.Get(context.Background(), KeyColleges)
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Set(ctx, KeySettings, `{"darkMode":false}`))
			require.NoError(t, s.Set(ctx, KeySettings, `{"darkMode":true}`))

			v, ok, err := s.Get(ctx, KeySettings)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"darkMode":true}`, v)

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{KeySettings}, keys)
		})
	}
}

func TestStore_EmptyKeyRejected(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			err := open(t).Set(context.Background(), "", "x")
			assert.ErrorIs(t, err, ErrEmptyKey)
		})
	}
}

func TestStore_DeleteAndKeys(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			require.NoError(t, s.Set(ctx, KeyColleges, "[]"))
			require.NoError(t, s.Set(ctx, KeyAnnouncements, "[]"))
			require.NoError(t, s.Set(ctx, KeyCustomTheme, "{}"))
			require.NoError(t, s.Delete(ctx, KeyAnnouncements))
			require.NoError(t, s.Delete(ctx, "never-set"))

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{KeyColleges, KeyCustomTheme}, keys)
		})
	}
}

func TestStore_ClearLeavesNoKeys(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := open(t)

			for _, k := range []string{KeyColleges, KeyAnnouncements, KeySettings, KeyLastBackupTime} {
				require.NoError(t, s.Set(ctx, k, `"x"`))
			}
			require.NoError(t, s.Clear(ctx))

			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Empty(t, keys)
		})
	}
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	ctx := context.Background()
	s, client := newTestRedisStore(t)

	require.NoError(t, client.Set(ctx, "asynq:unrelated", "keep", 0).Err())
	require.NoError(t, s.Set(ctx, KeyColleges, "[]"))

	raw, err := client.Get(ctx, "portfolio:"+KeyColleges).Result()
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyColleges}, keys)

	require.NoError(t, s.Clear(ctx))
	v, err := client.Get(ctx, "asynq:unrelated").Result()
	require.NoError(t, err)
	assert.Equal(t, "keep", v)
}

func TestRedisStore_ClearInBatches(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestRedisStore(t)

	for i := 0; i < scanBatch*2+5; i++ {
		require.NoError(t, s.Set(ctx, fmt.Sprintf("key-%03d", i), "v"))
	}
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Len(t, keys, scanBatch*2+5)

	require.NoError(t, s.Clear(ctx))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, KeyColleges, "[]"))
	require.NoError(t, s.Set(ctx, KeyLastBackupTime, "2026-01-01T00:00:00Z"))

	snap, err := Snapshot(ctx, s)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		KeyColleges:       "[]",
		KeyLastBackupTime: "2026-01-01T00:00:00Z",
	}, snap)
}

func TestOpen_Backends(t *testing.T) {
	cfg := config.DefaultConfig()

	cfg.Storage.Backend = BackendMemory
	s, err := Open(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	cfg.Storage.Backend = BackendDatabase
	_, err = Open(cfg, nil)
	assert.Error(t, err, "database backend needs a connection")

	cfg.Storage.Backend = "etcd"
	_, err = Open(cfg, nil)
	assert.Error(t, err)
}
