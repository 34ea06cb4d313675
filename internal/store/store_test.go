package store

import (
	"strings"
	"testing"
)

func TestBuildUpsert_SQLite(t *testing.T) {
	rows := []Row{
		{"company_id": "acme", "source_job_id": "1", "title": "VP Sales"},
		{"company_id": "acme", "source_job_id": "2", "title": "Director, Finance"},
	}
	query, args, err := sqliteDialect.buildUpsert("job_postings", rows, []string{"source_job_id", "company_id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := `INSERT INTO "job_postings" ("company_id", "source_job_id", "title") VALUES (?, ?, ?), (?, ?, ?) ` +
		`ON CONFLICT ("source_job_id", "company_id") DO UPDATE SET "title" = excluded."title"`
	if query != want {
		t.Errorf("query =\n%s\nwant\n%s", query, want)
	}
	if len(args) != 6 {
		t.Fatalf("expected 6 args, got %d", len(args))
	}
	if args[2] != "VP Sales" || args[5] != "Director, Finance" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuildUpsert_PostgresPlaceholders(t *testing.T) {
	rows := []Row{{"id": "a", "name": "A"}, {"id": "b", "name": "B"}}
	query, _, err := postgresDialect.buildUpsert("companies", rows, []string{"id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "VALUES ($1, $2), ($3, $4)") {
		t.Errorf("expected numbered placeholders, got %s", query)
	}
}

func TestBuildUpsert_OnlyKeysDoesNothing(t *testing.T) {
	query, _, err := sqliteDialect.buildUpsert("companies", []Row{{"id": "a"}}, []string{"id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(query, "DO NOTHING") {
		t.Errorf("expected DO NOTHING, got %s", query)
	}
}

func TestBuildUpsert_MissingColumnIsNull(t *testing.T) {
	rows := []Row{{"id": "a", "name": "A"}, {"id": "b"}}
	_, args, err := sqliteDialect.buildUpsert("companies", rows, []string{"id"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args[3] != nil {
		t.Errorf("expected nil for missing column, got %v", args[3])
	}
}

func TestBuildUpsert_Errors(t *testing.T) {
	tests := []struct {
		name  string
		table string
		rows  []Row
		keys  []string
	}{
		{"no rows", "companies", nil, []string{"id"}},
		{"no keys", "companies", []Row{{"id": "a"}}, nil},
		{"key missing", "companies", []Row{{"name": "a"}}, []string{"id"}},
		{"bad table", "companies; drop", []Row{{"id": "a"}}, []string{"id"}},
		{"bad column", "companies", []Row{{"id": "a", "Name\"": "x"}}, []string{"id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := sqliteDialect.buildUpsert(tt.table, tt.rows, tt.keys); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBuildSelect(t *testing.T) {
	query, args, err := postgresDialect.buildSelect("job_postings",
		[]string{"title", "level"},
		[]Filter{Eq("function", "gtm"), Gte("first_seen", "2026-01-01")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `SELECT "title", "level" FROM "job_postings" WHERE "function" = $1 AND "first_seen" >= $2`
	if query != want {
		t.Errorf("query =\n%s\nwant\n%s", query, want)
	}
	if len(args) != 2 || args[0] != "gtm" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuildSelect_RejectsOperator(t *testing.T) {
	_, _, err := sqliteDialect.buildSelect("job_postings", []string{"title"},
		[]Filter{{Column: "title", Op: "LIKE", Value: "%x%"}})
	if err == nil {
		t.Fatal("expected error for unsupported operator")
	}
}

func TestSchemaFiles(t *testing.T) {
	for _, dir := range []string{"sqlite", "postgres"} {
		scripts, err := schemaFiles(dir)
		if err != nil {
			t.Fatalf("%s: %v", dir, err)
		}
		if len(scripts) == 0 {
			t.Fatalf("%s: no migrations embedded", dir)
		}
		if !strings.Contains(scripts[0], `"job_postings"`) {
			t.Errorf("%s: first migration should create job_postings", dir)
		}
	}
}
