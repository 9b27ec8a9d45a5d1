// Package kv is an expiring key-value table on database/sql.
// It lets the search cache live in postgres when no redis is deployed.
package kv

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	errors "github.com/Laisky/errors/v2"
)

const maxTTL = 30 * 24 * time.Hour

var (
	regexpKey       = regexp.MustCompile(`^[a-zA-Z0-9_/:.\-]{1,128}$`)
	regexpTableName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)
)

// Kv is a key-value store kept in one sql table
type Kv struct {
	opt *option
	db  *sql.DB
}

type option struct {
	tableName string
}

// Option is a function that configures the kv
type Option func(*option) error

func applyOpts(opts ...Option) (*option, error) {
	// fill default
	o := &option{
		tableName: "search_cache",
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return o, nil
}

// WithTableName is a option to set the table name
func WithTableName(tableName string) Option {
	return func(o *option) error {
		if !regexpTableName.MatchString(tableName) {
			return errors.Errorf("invalid table name: %s", tableName)
		}
		o.tableName = tableName
		return nil
	}
}

// New create a new kv, creating its table when missing
func New(ctx context.Context, db *sql.DB, opts ...Option) (*Kv, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	opt, err := applyOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "apply opts")
	}

	kv := &Kv{
		opt: opt,
		db:  db,
	}

	if err := kv.setup(ctx); err != nil {
		return nil, errors.Wrap(err, "setup kv")
	}

	return kv, nil
}

func (kv *Kv) setup(ctx context.Context) error {
	stmt := `
CREATE TABLE IF NOT EXISTS ` + kv.opt.tableName + ` (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  expire_at TIMESTAMP NOT NULL
)`

	if _, err := kv.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "create kv table")
	}

	return nil
}

func validKey(key string) error {
	if !regexpKey.MatchString(key) {
		return errors.Errorf("invalid key: %s", key)
	}

	return nil
}

// SetBytes stores val under key for ttl.
func (kv *Kv) SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 || ttl > maxTTL {
		return errors.Errorf("ttl must be in (0, %s]: %s", maxTTL, ttl)
	}
	if err := validKey(key); err != nil {
		return errors.WithStack(err)
	}

	stmt := `
INSERT INTO ` + kv.opt.tableName + ` (key, value, expire_at)
VALUES ($1, $2, $3)
ON CONFLICT(key)
DO UPDATE SET value = EXCLUDED.value, expire_at = EXCLUDED.expire_at`

	expireAt := time.Now().Add(ttl).UTC()
	if _, err := kv.db.ExecContext(ctx, stmt, key, string(val), expireAt); err != nil {
		return errors.Wrap(err, "upsert kv item")
	}

	return nil
}

// GetBytes returns the value under key. found is false when the key is
// missing or expired; an expired row is deleted on the way out.
func (kv *Kv) GetBytes(ctx context.Context, key string) (val []byte, found bool, err error) {
	var (
		value    string
		expireAt time.Time
	)
	stmt := `SELECT value, expire_at FROM ` + kv.opt.tableName + ` WHERE key = $1 LIMIT 1`
	err = kv.db.QueryRowContext(ctx, stmt, key).Scan(&value, &expireAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, "get key %s", key)
	}

	if time.Now().After(expireAt) {
		_ = kv.Del(ctx, key)
		return nil, false, nil
	}

	return []byte(value), true, nil
}

// Del removes the key from the store.
func (kv *Kv) Del(ctx context.Context, key string) error {
	stmt := `DELETE FROM ` + kv.opt.tableName + ` WHERE key = $1`
	if _, err := kv.db.ExecContext(ctx, stmt, key); err != nil {
		return errors.Wrap(err, "delete key")
	}
	return nil
}

// PurgeExpired deletes every expired row and returns how many went.
func (kv *Kv) PurgeExpired(ctx context.Context) (int64, error) {
	stmt := `DELETE FROM ` + kv.opt.tableName + ` WHERE expire_at < $1`
	res, err := kv.db.ExecContext(ctx, stmt, time.Now().UTC())
	if err != nil {
		return 0, errors.Wrap(err, "purge expired")
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "rows affected")
	}

	return n, nil
}
