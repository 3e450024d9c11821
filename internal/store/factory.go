package store

import (
	"fmt"

	"github.com/huangang/portfolio/internal/config"
	"github.com/huangang/portfolio/pkg/logger"
	"gorm.io/gorm"
)

const (
	BackendDatabase = "database"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Open builds the backend named by cfg.Storage.Backend. When redis is
// requested but unreachable it falls back to the database.
func Open(cfg *config.Config, db *gorm.DB) (Store, error) {
	switch cfg.Storage.Backend {
	case BackendDatabase, "":
		if db == nil {
			return nil, fmt.Errorf("database store requires a database connection")
		}
		logger.Infof("[Store] Using database backend (%s)", cfg.Database.Driver)
		return NewDBStore(db), nil
	case BackendRedis:
		rs, err := NewRedisStore(&cfg.Redis, cfg.Storage.KeyPrefix)
		if err != nil {
			if db == nil {
				return nil, err
			}
			logger.Warn().Err(err).Msg("[Store] Redis unavailable, falling back to database backend")
			return NewDBStore(db), nil
		}
		logger.Infof("[Store] Using redis backend at %s (prefix %q)", cfg.Redis.Addr, cfg.Storage.KeyPrefix)
		return rs, nil
	case BackendMemory:
		logger.Warn().Msg("[Store] Using memory backend, data is lost on restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", cfg.Storage.Backend)
	}
}
