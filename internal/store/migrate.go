package store

import (
	"context"
	"embed"
	"fmt"
	"sort"
	"strings"
)

//go:embed schema/*/*.sql
var schemaFS embed.FS

// schemaFiles returns the migration scripts of one dialect in name order.
func schemaFiles(dir string) ([]string, error) {
	entries, err := schemaFS.ReadDir("schema/" + dir)
	if err != nil {
		return nil, fmt.Errorf("read schema dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var scripts []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		data, err := schemaFS.ReadFile("schema/" + dir + "/" + e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		scripts = append(scripts, string(data))
	}
	return scripts, nil
}

type execer interface {
	exec(ctx context.Context, script string) error
}

func runMigrations(ctx context.Context, dir string, db execer) error {
	scripts, err := schemaFiles(dir)
	if err != nil {
		return err
	}
	for i, s := range scripts {
		if err := db.exec(ctx, s); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
	}
	return nil
}
