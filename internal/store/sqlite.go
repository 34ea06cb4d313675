package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteBackend stores tables in a local SQLite file. Timestamps are written
// as RFC 3339 text and booleans as 0/1.
type SQLiteBackend struct {
	db *sql.DB
}

// NewSQLiteBackend opens (or creates) the database at dbPath and applies the
// schema.
func NewSQLiteBackend(ctx context.Context, dbPath string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// A single connection serializes writers from the scrape pool.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	b := &SQLiteBackend{db: db}
	if err := runMigrations(ctx, "sqlite", b); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite db: %w", err)
	}
	return b, nil
}

func (b *SQLiteBackend) exec(ctx context.Context, script string) error {
	_, err := b.db.ExecContext(ctx, script)
	return err
}

// Upsert writes rows in one statement.
func (b *SQLiteBackend) Upsert(ctx context.Context, table string, rows []Row, conflictKeys []string) (int, error) {
	query, args, err := sqliteDialect.buildUpsert(table, rows, conflictKeys)
	if err != nil {
		return 0, err
	}
	for i, a := range args {
		args[i] = sqliteValue(a)
	}
	if _, err := b.db.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("upsert into %s: %w", table, err)
	}
	return len(rows), nil
}

// Select returns matching rows. Text columns come back as string and integer
// columns as int64.
func (b *SQLiteBackend) Select(ctx context.Context, table string, columns []string, filters []Filter) ([]Row, error) {
	query, args, err := sqliteDialect.buildSelect(table, columns, filters)
	if err != nil {
		return nil, err
	}
	for i, a := range args {
		args[i] = sqliteValue(a)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", table, err)
		}
		r := make(Row, len(columns))
		for i, c := range columns {
			if bs, ok := values[i].([]byte); ok {
				r[c] = string(bs)
			} else {
				r[c] = values[i]
			}
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select from %s: %w", table, err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}

func sqliteValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.UTC().Format(time.RFC3339Nano)
	case *time.Time:
		if x == nil {
			return nil
		}
		return x.UTC().Format(time.RFC3339Nano)
	case bool:
		if x {
			return int64(1)
		}
		return int64(0)
	case *string:
		if x == nil {
			return nil
		}
		return *x
	case *int:
		if x == nil {
			return nil
		}
		return int64(*x)
	}
	return v
}
