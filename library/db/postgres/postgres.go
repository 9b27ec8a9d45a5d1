// Package postgres opens the database/sql handle backed by pgx.
package postgres

import (
	"context"
	"database/sql"
	"net/url"
	"time"

	errors "github.com/Laisky/errors/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB postgres db
type DB struct {
	DB *sql.DB
}

// DialInfo postgres dial info.
// Addr may carry a port, like `localhost:5432`.
type DialInfo struct {
	Addr,
	DBName,
	User,
	Pwd string
}

// BuildDSN builds a postgres URL DSN.
func BuildDSN(dialInfo DialInfo) string {
	u := &url.URL{
		Scheme:   "postgres",
		Host:     dialInfo.Addr,
		Path:     "/" + dialInfo.DBName,
		RawQuery: "sslmode=disable&TimeZone=UTC",
	}
	if dialInfo.User != "" || dialInfo.Pwd != "" {
		u.User = url.UserPassword(dialInfo.User, dialInfo.Pwd)
	}

	return u.String()
}

// NewDB create a new postgres db
func NewDB(ctx context.Context, dialInfo DialInfo) (*DB, error) {
	db, err := sql.Open("pgx", BuildDSN(dialInfo))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}

	db.SetMaxIdleConns(6)
	db.SetMaxOpenConns(50)
	db.SetConnMaxLifetime(time.Hour)

	return &DB{DB: db}, nil
}

// Close closes the underlying pool.
func (d *DB) Close() error {
	return errors.WithStack(d.DB.Close())
}
