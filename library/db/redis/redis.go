// Package redis wraps go-redis for the search cache.
package redis

import (
	"context"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/redis/go-redis/v9"
)

// DB is a wrapper for go-redis
type DB struct {
	cli redis.UniversalClient
}

// NewDB creates a new DB instance
func NewDB(opt *redis.Options) *DB {
	return &DB{cli: redis.NewClient(opt)}
}

// NewDBWithClient wraps an existing client.
func NewDBWithClient(cli redis.UniversalClient) *DB {
	return &DB{cli: cli}
}

// GetBytes returns the value at key. found is false when the key does not exist.
func (db *DB) GetBytes(ctx context.Context, key string) (val []byte, found bool, err error) {
	val, err = db.cli.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "get `%s`", key)
	}

	return val, true, nil
}

// SetBytes stores val at key with ttl.
func (db *DB) SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := db.cli.Set(ctx, key, val, ttl).Err(); err != nil {
		return errors.Wrapf(err, "set `%s`", key)
	}

	return nil
}

// Close closes the client.
func (db *DB) Close() error {
	return errors.WithStack(db.cli.Close())
}
