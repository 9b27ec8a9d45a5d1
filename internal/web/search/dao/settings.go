package dao

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gconfig "github.com/Laisky/go-config/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	goredis "github.com/redis/go-redis/v9"

	"github.com/Laisky/zine-site/library/config"
	"github.com/Laisky/zine-site/library/db/mongo"
	"github.com/Laisky/zine-site/library/db/postgres"
	"github.com/Laisky/zine-site/library/db/redis"
	"github.com/Laisky/zine-site/library/db/sql/kv"
	"github.com/Laisky/zine-site/library/log"
)

const (
	StoreDriverMongo    = "mongo"
	StoreDriverPostgres = "postgres"

	CacheBackendRedis    = "redis"
	CacheBackendPostgres = "postgres"

	defaultCacheTTL   = 5 * time.Minute
	defaultCacheTable = "search_cache"
)

// cachePurgeInterval is how often expired rows leave the postgres cache table.
var cachePurgeInterval = 10 * time.Minute

// Settings selects and configures the content store.
type Settings struct {
	Driver   string
	Mongo    mongo.DialInfo
	Postgres postgres.DialInfo
	Cache    CacheSettings
}

// CacheSettings configures the optional result cache.
type CacheSettings struct {
	Enabled bool
	// Backend redis, or postgres to keep the cache in a table of the postgres db
	Backend string
	// Table name of the cache table when Backend is postgres
	Table string
	TTL   time.Duration
	Redis goredis.Options
}

// LoadSettings reads Settings from the shared configuration.
func LoadSettings() Settings {
	return Settings{
		Driver: strings.ToLower(config.StringOr("settings.search.store", StoreDriverMongo)),
		Mongo: mongo.DialInfo{
			Addr:   gconfig.Shared.GetString("settings.db.content.addr"),
			DBName: gconfig.Shared.GetString("settings.db.content.db"),
			User:   gconfig.Shared.GetString("settings.db.content.user"),
			Pwd:    gconfig.Shared.GetString("settings.db.content.pwd"),
			AuthDB: gconfig.Shared.GetString("settings.db.content.auth_db"),
		},
		Postgres: postgres.DialInfo{
			Addr:   gconfig.Shared.GetString("settings.db.postgres.addr"),
			DBName: gconfig.Shared.GetString("settings.db.postgres.db"),
			User:   gconfig.Shared.GetString("settings.db.postgres.user"),
			Pwd:    gconfig.Shared.GetString("settings.db.postgres.pwd"),
		},
		Cache: CacheSettings{
			Enabled: gconfig.Shared.GetBool("settings.search.cache.enabled"),
			Backend: strings.ToLower(config.StringOr("settings.search.cache.backend", CacheBackendRedis)),
			Table:   config.StringOr("settings.search.cache.table", defaultCacheTable),
			TTL:     time.Duration(config.IntOr("settings.search.cache.ttl_sec", int(defaultCacheTTL/time.Second))) * time.Second,
			Redis: goredis.Options{
				Addr:     gconfig.Shared.GetString("settings.db.redis.addr"),
				Password: gconfig.Shared.GetString("settings.db.redis.pwd"),
				DB:       gconfig.Shared.GetInt("settings.db.redis.db"),
			},
		},
	}
}

// Store is an opened content store with its connections.
type Store struct {
	ContentStore
	// Mongo set when the driver is mongo
	Mongo *MongoStore
	// Postgres set when the driver is postgres
	Postgres *PostgresStore

	closers []func(context.Context) error
}

// Close releases every connection the store opened.
func (s *Store) Close(ctx context.Context) error {
	var firstErr error
	for _, c := range s.closers {
		if err := c(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

// Open connects the store named by settings, wrapping it with the cache when enabled.
func Open(ctx context.Context, settings Settings) (*Store, error) {
	logger := log.Logger.Named("content_store")
	store := &Store{}

	switch settings.Driver {
	case StoreDriverMongo:
		db, err := mongo.NewDB(ctx, settings.Mongo)
		if err != nil {
			return nil, errors.Wrap(err, "connect content mongo")
		}

		store.Mongo = NewMongoStore(logger, db)
		store.ContentStore = store.Mongo
		store.closers = append(store.closers, db.Close)
	case StoreDriverPostgres:
		db, err := postgres.NewDB(ctx, settings.Postgres)
		if err != nil {
			return nil, errors.Wrap(err, "connect content postgres")
		}

		store.Postgres = NewPostgresStore(logger, db.DB)
		store.ContentStore = store.Postgres
		store.closers = append(store.closers, func(context.Context) error { return db.Close() })
	default:
		return nil, errors.Wrapf(ErrUnknownStoreDriver, "driver `%s`", settings.Driver)
	}

	if settings.Cache.Enabled {
		cache, err := store.openCache(ctx, settings)
		if err != nil {
			_ = store.Close(ctx)
			return nil, errors.Wrap(err, "open search cache")
		}

		store.ContentStore = NewCachedStore(logger.Named("cache"), store.ContentStore, cache, settings.Cache.TTL)
	}

	logger.Info("content store opened",
		zap.String("driver", settings.Driver),
		zap.Bool("cache", settings.Cache.Enabled))
	return store, nil
}

// openCache connects the cache backend, reusing the content db when the
// cache lives in the same postgres.
func (s *Store) openCache(ctx context.Context, settings Settings) (Cache, error) {
	switch settings.Cache.Backend {
	case CacheBackendRedis:
		rdb := redis.NewDB(&settings.Cache.Redis)
		s.closers = append(s.closers, func(context.Context) error { return rdb.Close() })
		return rdb, nil
	case CacheBackendPostgres:
		var sqlDB *sql.DB
		if s.Postgres != nil {
			sqlDB = s.Postgres.db
		} else {
			db, err := postgres.NewDB(ctx, settings.Postgres)
			if err != nil {
				return nil, errors.Wrap(err, "connect cache postgres")
			}

			s.closers = append(s.closers, func(context.Context) error { return db.Close() })
			sqlDB = db.DB
		}

		table := settings.Cache.Table
		if table == "" {
			table = defaultCacheTable
		}

		cache, err := kv.New(ctx, sqlDB, kv.WithTableName(table))
		if err != nil {
			return nil, errors.Wrap(err, "new sql cache")
		}

		// stop purging before any db closer runs
		stop := runCachePurge(log.Logger.Named("cache_purge"), cache, cachePurgeInterval)
		s.closers = append([]func(context.Context) error{stop}, s.closers...)
		return cache, nil
	default:
		return nil, errors.Errorf("unknown cache backend `%s`", settings.Cache.Backend)
	}
}

// runCachePurge deletes expired cache rows every interval.
// The returned func stops the loop and waits for it to exit.
func runCachePurge(logger logSDK.Logger, cache *kv.Kv, interval time.Duration) func(context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			n, err := cache.PurgeExpired(ctx)
			if err != nil {
				logger.Warn("purge expired search cache", zap.Error(err))
				continue
			}

			logger.Debug("purged expired search cache", zap.Int64("n", n))
		}
	}()

	return func(context.Context) error {
		cancel()
		<-done
		return nil
	}
}
