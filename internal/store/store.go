// Package store persists companies, postings, layoff events and scrape runs
// in a relational backend (SQLite or Postgres).
package store

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Row is one record at the storage boundary, keyed by column name.
type Row map[string]any

// Filter is a single "column op value" condition. Filters are ANDed.
type Filter struct {
	Column string
	Op     string // one of = != < <= > >=
	Value  any
}

// Eq returns an equality filter.
func Eq(column string, value any) Filter { return Filter{Column: column, Op: "=", Value: value} }

// Gte returns a greater-or-equal filter.
func Gte(column string, value any) Filter { return Filter{Column: column, Op: ">=", Value: value} }

// Backend is a table-oriented relational store.
type Backend interface {
	// Upsert inserts rows, updating existing rows that collide on
	// conflictKeys. It returns the number of rows written.
	Upsert(ctx context.Context, table string, rows []Row, conflictKeys []string) (int, error)
	// Select returns the given columns of every row matching all filters.
	Select(ctx context.Context, table string, columns []string, filters []Filter) ([]Row, error)
	Close() error
}

var identRegex = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var allowedOps = map[string]bool{"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

// dialect captures the SQL differences between backends.
type dialect struct {
	placeholder func(n int) string
}

var (
	sqliteDialect   = dialect{placeholder: func(int) string { return "?" }}
	postgresDialect = dialect{placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
)

func quoteIdent(name string) (string, error) {
	if !identRegex.MatchString(name) {
		return "", fmt.Errorf("invalid identifier %q", name)
	}
	return `"` + name + `"`, nil
}

// rowColumns returns the sorted union of column names across rows.
func rowColumns(rows []Row) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			seen[k] = true
		}
	}
	cols := make([]string, 0, len(seen))
	for k := range seen {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// buildUpsert renders a multi-row INSERT ... ON CONFLICT DO UPDATE statement.
// Columns absent from a row are written as NULL.
func (d dialect) buildUpsert(table string, rows []Row, conflictKeys []string) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("upsert into %s: no rows", table)
	}
	if len(conflictKeys) == 0 {
		return "", nil, fmt.Errorf("upsert into %s: no conflict keys", table)
	}
	qt, err := quoteIdent(table)
	if err != nil {
		return "", nil, err
	}

	cols := rowColumns(rows)
	isKey := make(map[string]bool, len(conflictKeys))
	qKeys := make([]string, len(conflictKeys))
	for i, k := range conflictKeys {
		if qKeys[i], err = quoteIdent(k); err != nil {
			return "", nil, err
		}
		isKey[k] = true
	}
	qCols := make([]string, len(cols))
	var updates []string
	for i, c := range cols {
		if qCols[i], err = quoteIdent(c); err != nil {
			return "", nil, err
		}
		if !isKey[c] {
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", qCols[i], qCols[i]))
		}
	}
	for _, k := range conflictKeys {
		found := false
		for _, c := range cols {
			if c == k {
				found = true
				break
			}
		}
		if !found {
			return "", nil, fmt.Errorf("upsert into %s: conflict key %q missing from rows", table, k)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", qt, strings.Join(qCols, ", "))
	args := make([]any, 0, len(rows)*len(cols))
	n := 0
	for i, r := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j, c := range cols {
			if j > 0 {
				sb.WriteString(", ")
			}
			n++
			sb.WriteString(d.placeholder(n))
			args = append(args, r[c])
		}
		sb.WriteByte(')')
	}
	fmt.Fprintf(&sb, " ON CONFLICT (%s) DO ", strings.Join(qKeys, ", "))
	if len(updates) == 0 {
		sb.WriteString("NOTHING")
	} else {
		sb.WriteString("UPDATE SET ")
		sb.WriteString(strings.Join(updates, ", "))
	}
	return sb.String(), args, nil
}

// buildSelect renders a SELECT with ANDed filters.
func (d dialect) buildSelect(table string, columns []string, filters []Filter) (string, []any, error) {
	qt, err := quoteIdent(table)
	if err != nil {
		return "", nil, err
	}
	if len(columns) == 0 {
		return "", nil, fmt.Errorf("select from %s: no columns", table)
	}
	qCols := make([]string, len(columns))
	for i, c := range columns {
		if qCols[i], err = quoteIdent(c); err != nil {
			return "", nil, err
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", strings.Join(qCols, ", "), qt)
	args := make([]any, 0, len(filters))
	for i, f := range filters {
		qc, err := quoteIdent(f.Column)
		if err != nil {
			return "", nil, err
		}
		if !allowedOps[f.Op] {
			return "", nil, fmt.Errorf("select from %s: unsupported operator %q", table, f.Op)
		}
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&sb, "%s %s %s", qc, f.Op, d.placeholder(len(args)))
	}
	return sb.String(), args, nil
}
