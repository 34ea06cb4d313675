package layoffs

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	in := strings.Join([]string{
		"Company,Date,Employees_Affected,Geography,Functions,Source",
		`"Acme, Inc.",2026-04-02,"1,200",US,GTM; Product,news`,
		"Globex LLC,03/15/2026,,,,",
		"Initech,not-a-date,10,US,,",
		",2026-01-01,5,,,",
		"Hooli,2026/02/10,many,EU,,",
	}, "\n")

	events, rowErrs, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %+v", len(events), events)
	}
	if len(rowErrs) != 3 {
		t.Fatalf("expected 3 row errors, got %d: %v", len(rowErrs), rowErrs)
	}
	var re *RowError
	if !errors.As(rowErrs[0], &re) || re.Line != 4 {
		t.Errorf("first row error = %v, want line 4", rowErrs[0])
	}

	acme := events[0]
	if acme.CompanyNorm != "acme" || acme.CompanyName != "Acme, Inc." {
		t.Errorf("acme = %+v", acme)
	}
	if !acme.EventDate.Equal(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("acme date = %v", acme.EventDate)
	}
	if acme.EmployeesAffected == nil || *acme.EmployeesAffected != 1200 {
		t.Errorf("acme employees = %v", acme.EmployeesAffected)
	}
	if acme.Geography == nil || *acme.Geography != "US" {
		t.Errorf("acme geography = %v", acme.Geography)
	}
	if len(acme.FunctionTags) != 2 || acme.FunctionTags[0] != "gtm" || acme.FunctionTags[1] != "product" {
		t.Errorf("acme tags = %v", acme.FunctionTags)
	}

	globex := events[1]
	if globex.CompanyNorm != "globex" || globex.EmployeesAffected != nil || globex.Geography != nil {
		t.Errorf("globex = %+v", globex)
	}
	if !globex.EventDate.Equal(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("globex date = %v", globex.EventDate)
	}
}

func TestParse_MissingColumns(t *testing.T) {
	if _, _, err := Parse(strings.NewReader("company,employees\nacme,10\n")); err == nil {
		t.Error("expected error when date column is missing")
	}
	if _, _, err := Parse(strings.NewReader("")); err == nil {
		t.Error("expected error for empty input")
	}
}
