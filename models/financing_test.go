package models_test

import (
	"testing"
	"time"

	"github.com/gallagherpc/deals_backend/models"
)

func date(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return &parsed
}

func intPtr(v int) *int { return &v }

func TestStartDatePreference(t *testing.T) {
	funded := date(t, "2025-02-01")
	committed := date(t, "2025-01-01")
	closing := date(t, "2024-12-01")

	financing := models.Financing{FundedDate: funded, CommitmentDate: committed}
	if got := financing.StartDate(closing); !got.Equal(*funded) {
		t.Fatalf("start = %v, want funded date", got)
	}

	financing = models.Financing{CommitmentDate: committed}
	if got := financing.StartDate(closing); !got.Equal(*committed) {
		t.Fatalf("start = %v, want commitment date", got)
	}

	financing = models.Financing{}
	if got := financing.StartDate(closing); !got.Equal(*closing) {
		t.Fatalf("start = %v, want closing date", got)
	}
	if got := financing.StartDate(nil); got != nil {
		t.Fatalf("start with no dates = %v, want nil", got)
	}
}

func TestMaturityDate(t *testing.T) {
	funded := date(t, "2025-01-01")

	financing := models.Financing{FundedDate: funded, LoanTermMonths: intPtr(24)}
	maturity := financing.MaturityDate(nil)
	if maturity == nil {
		t.Fatal("expected a maturity date")
	}
	if got := maturity.Format("2006-01-02"); got != "2027-01-01" {
		t.Fatalf("maturity = %s, want 2027-01-01", got)
	}

	// missing term collapses to a zero-duration bucket at the start
	financing = models.Financing{FundedDate: funded}
	maturity = financing.MaturityDate(nil)
	if maturity == nil || !maturity.Equal(*funded) {
		t.Fatalf("maturity without term = %v, want the start date", maturity)
	}

	financing = models.Financing{LoanTermMonths: intPtr(24)}
	if got := financing.MaturityDate(nil); got != nil {
		t.Fatalf("maturity without any start = %v, want nil", got)
	}
}

func TestLenderBucket(t *testing.T) {
	name := "Hancock Whitney"
	financing := models.Financing{LenderName: &name}
	if got := financing.LenderBucket(); got != name {
		t.Fatalf("bucket = %q, want %q", got, name)
	}

	empty := ""
	for _, f := range []models.Financing{{}, {LenderName: &empty}} {
		if got := f.LenderBucket(); got != models.UnspecifiedLender {
			t.Fatalf("bucket = %q, want sentinel", got)
		}
	}
}
