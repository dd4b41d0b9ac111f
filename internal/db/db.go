package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const maxConnectWait = 30 * time.Second

// Open opens a SQLite database, sets recommended pragmas, and validates connectivity.
// The ping is retried with exponential backoff while the file is locked by another process.
func Open(ctx context.Context, dbPath string, log *zap.Logger) (*sql.DB, error) {
	// busy_timeout and foreign_keys are per connection, so they go in the DSN.
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxConnectWait

	err = backoff.RetryNotify(
		func() error {
			return db.PingContext(ctx)
		},
		backoff.WithContext(policy, ctx),
		func(err error, next time.Duration) {
			log.Warn("sqlite ping failed, retrying",
				zap.String("path", dbPath),
				zap.Error(err),
				zap.Duration("next_attempt_in", next))
		},
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	return db, nil
}
