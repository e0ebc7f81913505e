// Package db opens the settings backend selected by configuration.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/AnnekeHeelsum/android-uploader/config"
	"github.com/AnnekeHeelsum/android-uploader/db/mongo"
	"github.com/AnnekeHeelsum/android-uploader/db/mysql"
	"github.com/AnnekeHeelsum/android-uploader/db/postgres"
	"github.com/AnnekeHeelsum/android-uploader/db/redis"
	"github.com/AnnekeHeelsum/android-uploader/db/sqlite"
	"github.com/AnnekeHeelsum/android-uploader/settings"
)

// Open returns the store for cfg. The caller must Close it.
func Open(ctx context.Context, cfg config.StoreConfig, timeout time.Duration) (settings.Store, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return settings.NewMemoryStore(nil), nil
	case config.BackendFile:
		return settings.NewFileStore(cfg.Path), nil
	case config.BackendSQLite:
		return sqlite.Open(ctx, cfg.Path, cfg.Namespace, timeout)
	case config.BackendMySQL:
		return mysql.Open(ctx, cfg.URI, cfg.Namespace, timeout)
	case config.BackendPostgres:
		return postgres.Open(ctx, cfg.URI, cfg.Namespace, timeout)
	case config.BackendRedis:
		client, err := redis.Connect(cfg.URI, timeout)
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		return redis.NewStore(client, cfg.Namespace), nil
	case config.BackendMongo:
		return mongo.Open(cfg.URI, cfg.Namespace, timeout)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
