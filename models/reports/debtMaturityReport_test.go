package reports_test

import (
	"testing"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/models/reports"
)

func TestDebtMaturityQuarterBucketing(t *testing.T) {
	deal := makeDeal(t, dealSpec{
		id: 1, status: models.PipelineStatusActive,
		financing: []models.Financing{{
			LoanAmount:     dec(t, "1000000"),
			FundedDate:     datePtr(t, "2025-01-01"),
			LoanTermMonths: intPtr(24),
		}},
	})

	now := date(t, "2025-06-01")
	result := reports.BuildDebtMaturityWall([]*models.Deal{deal}, now)

	if len(result.Quarters) != 1 {
		t.Fatalf("quarters = %+v, want 1", result.Quarters)
	}
	quarter := result.Quarters[0]
	if quarter.Quarter != "2027-Q1" {
		t.Fatalf("quarter = %q, want 2027-Q1", quarter.Quarter)
	}
	if !quarter.TotalMaturingDebt.Equal(dec(t, "1000000")) {
		t.Fatalf("maturing debt = %s, want 1000000", quarter.TotalMaturingDebt)
	}
	if quarter.DealsAffected != 1 {
		t.Fatalf("deals affected = %d, want 1", quarter.DealsAffected)
	}
}

func TestDebtMaturityScoreClamped(t *testing.T) {
	financing := make([]models.Financing, 0, 30)
	for i := 0; i < 30; i++ {
		financing = append(financing, models.Financing{
			LoanAmount:      dec(t, "1000000"),
			FundedDate:      datePtr(t, "2025-01-01"),
			LoanTermMonths:  intPtr(6),
			DscrRequirement: decPtr(t, "1.40"),
		})
	}
	deals := make([]*models.Deal, 0, 30)
	for i := 0; i < 30; i++ {
		deals = append(deals, makeDeal(t, dealSpec{
			id: i + 1, financing: []models.Financing{financing[i]},
		}))
	}

	result := reports.BuildDebtMaturityWall(deals, date(t, "2025-02-01"))
	for _, quarter := range result.Quarters {
		if quarter.RefinanceRiskScore < 0 || quarter.RefinanceRiskScore > 100 {
			t.Fatalf("score = %d, want within [0,100]", quarter.RefinanceRiskScore)
		}
	}
	// 100% debt share, 30 deals, wDSCR 1.40: raw 80+120+8 clamps to 100
	if result.Quarters[0].RefinanceRiskScore != 100 {
		t.Fatalf("score = %d, want clamped 100", result.Quarters[0].RefinanceRiskScore)
	}
}

func TestDebtMaturitySkipsUnanchoredRows(t *testing.T) {
	deals := []*models.Deal{
		makeDeal(t, dealSpec{id: 1, financing: []models.Financing{
			{LoanAmount: dec(t, "500000")}, // no dates anywhere
			{LoanAmount: dec(t, "0"), FundedDate: datePtr(t, "2025-01-01")},
		}}),
		makeDeal(t, dealSpec{id: 2, status: models.PipelineStatusKilled, financing: []models.Financing{
			{LoanAmount: dec(t, "750000"), FundedDate: datePtr(t, "2025-01-01"), LoanTermMonths: intPtr(12)},
		}}),
	}

	result := reports.BuildDebtMaturityWall(deals, date(t, "2025-06-01"))
	if len(result.Quarters) != 0 {
		t.Fatalf("quarters = %+v, want none", result.Quarters)
	}
	if !result.TotalPortfolioDebt.IsZero() {
		t.Fatalf("total debt = %s, want 0", result.TotalPortfolioDebt)
	}
}

func TestDebtMaturityTwelveMonthAlert(t *testing.T) {
	deals := []*models.Deal{
		makeDeal(t, dealSpec{id: 1, financing: []models.Financing{
			{LoanAmount: dec(t, "300000"), FundedDate: datePtr(t, "2025-01-01"), LoanTermMonths: intPtr(6)},
			{LoanAmount: dec(t, "700000"), FundedDate: datePtr(t, "2025-01-01"), LoanTermMonths: intPtr(60)},
		}}),
	}

	result := reports.BuildDebtMaturityWall(deals, date(t, "2025-02-01"))
	if !result.DebtMaturing12Months.Equal(dec(t, "300000")) {
		t.Fatalf("maturing soon = %s, want 300000", result.DebtMaturing12Months)
	}
	if !result.HasAlert {
		t.Fatal("30% maturing within a year must alert")
	}
}
