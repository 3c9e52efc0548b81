// Package postgres provides plan catalog and connection snapshot providers
// backed by the billing backend's PostgreSQL database.
package postgres

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"isp-billing/internal/errors"
)

// Open creates a connection pool and verifies it with a ping
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	pool, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Provider("postgres: open", err)
	}
	pool.SetMaxOpenConns(10)
	pool.SetMaxIdleConns(2)
	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, errors.Provider("postgres: ping", err)
	}
	return pool, nil
}
