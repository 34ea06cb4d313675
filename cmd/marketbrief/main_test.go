package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/amishk599/marketbrief/internal/brief"

	"github.com/amishk599/marketbrief/internal/model"
)

func TestOnePerPlatform(t *testing.T) {
	companies := []model.Company{
		{ID: "a", CareersURL: "https://boards.greenhouse.io/a"},
		{ID: "b", CareersURL: "https://jobs.lever.co/b"},
		{ID: "c", ATS: model.PlatformGreenhouse, BoardToken: "c"},
		{ID: "d", CareersURL: "https://jobs.ashbyhq.com/d"},
	}
	got := onePerPlatform(companies)

	want := []string{"a", "b", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %d companies, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d] = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestAcquireLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "marketbrief.lock")

	lock, err := acquireLock(path)
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}

	if _, err := acquireLock(path); err == nil {
		t.Error("second lock should fail while the first is held")
	}

	if err := lock.Unlock(); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	again, err := acquireLock(path)
	if err != nil {
		t.Fatalf("lock after unlock: %v", err)
	}
	again.Unlock()
}

func TestEmitReport(t *testing.T) {
	const md = "# Recruiter Market Brief"
	tests := []struct {
		name      string
		briefPath string
		quiet     bool
		wantOut   bool
	}{
		{"default prints", "reports/briefs/brief_20260615.md", false, true},
		{"quiet after write", "reports/briefs/brief_20260615.md", true, false},
		{"quiet but write failed", "", true, true},
		{"write failed", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			report := &brief.Report{Markdown: md, BriefPath: tt.briefPath}
			if err := emitReport(&buf, report, tt.quiet); err != nil {
				t.Fatalf("emitReport: %v", err)
			}
			if got := strings.Contains(buf.String(), md); got != tt.wantOut {
				t.Errorf("printed = %v, want %v (output %q)", got, tt.wantOut, buf.String())
			}
		})
	}
}
