package driver

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"catalog-engine/domain"
)

// Querier is the subset of pgxpool.Pool the catalog drivers use. Tests
// substitute a pgxmock pool.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// NewPostgresPool opens a pgx connection pool for the catalog database.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, &domain.DriverError{Op: "NewPostgresPool", Err: "parse database URL: " + err.Error()}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, &domain.DriverError{Op: "NewPostgresPool", Err: err.Error()}
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &domain.DriverError{Op: "NewPostgresPool", Err: "ping: " + err.Error()}
	}

	return pool, nil
}
