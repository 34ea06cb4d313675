package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresBackend stores tables in a Postgres database (a managed
// Supabase-style instance or self-hosted) through a pgx pool.
type PostgresBackend struct {
	pool *pgxpool.Pool
}

// NewPostgresBackend connects to databaseURL and applies the schema.
func NewPostgresBackend(ctx context.Context, databaseURL string, logger *slog.Logger) (*PostgresBackend, error) {
	if databaseURL == "" {
		return nil, errors.New("database url is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	b := &PostgresBackend{pool: pool}
	if err := runMigrations(ctx, "postgres", b); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info("postgres connected", "host", config.ConnConfig.Host, "database", config.ConnConfig.Database)
	return b, nil
}

func (b *PostgresBackend) exec(ctx context.Context, script string) error {
	_, err := b.pool.Exec(ctx, script)
	return err
}

// Upsert writes rows in one statement. Postgres rejects a statement that
// touches the same conflict key twice, so callers should dedupe first.
func (b *PostgresBackend) Upsert(ctx context.Context, table string, rows []Row, conflictKeys []string) (int, error) {
	query, args, err := postgresDialect.buildUpsert(table, rows, conflictKeys)
	if err != nil {
		return 0, err
	}
	if _, err := b.pool.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("upsert into %s: %w", table, err)
	}
	return len(rows), nil
}

// Select returns matching rows with pgx native value types (string, bool,
// time.Time, int32/int64).
func (b *PostgresBackend) Select(ctx context.Context, table string, columns []string, filters []Filter) ([]Row, error) {
	query, args, err := postgresDialect.buildSelect(table, columns, filters)
	if err != nil {
		return nil, err
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		r := make(Row, len(columns))
		for i, c := range columns {
			r[c] = values[i]
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	return out, nil
}

// Close releases the pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
