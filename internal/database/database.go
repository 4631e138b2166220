// Package database centralises sqlx connection helpers.  The driver is
// go-sql-driver/mysql, which also works with MariaDB and other servers that
// speak the MySQL wire protocol.
//
// Public entry points:
//
//	DSN(template, password)            – inject the secret and required flags.
//	Open(ctx, dsn)                     – quick helper with conservative pool sizes.
//	OpenWithOptions(ctx, dsn, opts)    – fine-grained control and ping retries.
//
// Both helpers Ping the database before returning so callers can fail fast
// during bootstrap.  Callers should Close() the returned *sqlx.DB when no
// longer needed.
//
// Every DSN passes through DSN(), which forces parseTime (DATETIME columns
// scan into time.Time) and clientFoundRows (RowsAffected counts matched
// rows, so an UPDATE that changes nothing still reports its row).  The site
// store relies on both.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Options tunes one pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Retries         int           // extra ping attempts after the first
	RetryBackoff    time.Duration // doubled after each failed attempt
}

// DefaultOptions: 15 max open, 5 idle, a 30-minute connection lifetime, and
// three retries starting at half a second.
func DefaultOptions() Options {
	return Options{
		MaxOpenConns:    15,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         3,
		RetryBackoff:    500 * time.Millisecond,
	}
}

// DSN parses a go-sql-driver DSN, sets password when non-empty, and forces
// the flags the store depends on.
func DSN(template, password string) (string, error) {
	cfg, err := mysql.ParseDSN(template)
	if err != nil {
		return "", fmt.Errorf("database: parse dsn: %w", err)
	}
	if password != "" {
		cfg.Passwd = password
	}
	cfg.ParseTime = true
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

// Open returns a *sqlx.DB with DefaultOptions.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	return OpenWithOptions(ctx, dsn, DefaultOptions())
}

// OpenWithOptions opens a pool and pings it, retrying with backoff.
func OpenWithOptions(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	configure(db, opts)

	if err := ping(ctx, db, opts); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func configure(db *sqlx.DB, opts Options) {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
}

func ping(ctx context.Context, db *sqlx.DB, opts Options) error {
	backoff := opts.RetryBackoff
	var err error
	for attempt := 0; ; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if attempt >= opts.Retries {
			break
		}
		zap.L().Warn("database: ping failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		t := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("database: ping: %w", ctx.Err())
		case <-t.C:
		}
		backoff *= 2
	}
	return fmt.Errorf("database: ping after %d attempts: %w", opts.Retries+1, err)
}
