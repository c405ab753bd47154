package reports_test

import (
	"testing"
	"time"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/models/reports"
	"github.com/shopspring/decimal"
)

func dec(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return parsed
}

func decPtr(t *testing.T, value string) *decimal.Decimal {
	t.Helper()
	parsed := dec(t, value)
	return &parsed
}

func date(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed
}

func datePtr(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed := date(t, value)
	return &parsed
}

func intPtr(v int) *int { return &v }

type dealSpec struct {
	id           int
	name         string
	sku          models.DealSku
	status       models.PipelineStatus
	jurisdiction string
	acres        string
	createdAt    string
	closingDate  string
	purchase     string
	equity       string
	financing    []models.Financing
}

func makeDeal(t *testing.T, spec dealSpec) *models.Deal {
	t.Helper()
	deal := &models.Deal{
		ID:             spec.id,
		OrganizationId: "org-1",
		Name:           spec.name,
		Sku:            spec.sku,
		Status:         spec.status,
		FinancingTerms: spec.financing,
	}
	if deal.Name == "" {
		deal.Name = "Deal"
	}
	if deal.Sku == "" {
		deal.Sku = models.DealSkuFlexIndustrial
	}
	if deal.Status == "" {
		deal.Status = models.PipelineStatusActive
	}
	if spec.jurisdiction != "" {
		deal.JurisdictionId = len(spec.jurisdiction)
		deal.Jurisdiction = &models.Jurisdiction{ID: deal.JurisdictionId, Name: spec.jurisdiction}
	}
	if spec.acres != "" {
		deal.Parcels = []models.Parcel{{DealId: spec.id, Acreage: decPtr(t, spec.acres)}}
	}
	if spec.createdAt != "" {
		deal.CreatedAt = date(t, spec.createdAt)
	} else {
		deal.CreatedAt = date(t, "2025-01-01")
	}
	if spec.closingDate != "" {
		deal.ClosingDate = datePtr(t, spec.closingDate)
	}
	if spec.purchase != "" {
		deal.PurchasePrice = dec(t, spec.purchase)
	}
	if spec.equity != "" {
		deal.EquityRequired = dec(t, spec.equity)
	}
	return deal
}

func makeSnapshots(t *testing.T, scores map[int]float64, specs ...dealSpec) []*reports.DealSnapshot {
	t.Helper()
	deals := make([]*models.Deal, 0, len(specs))
	for _, spec := range specs {
		deals = append(deals, makeDeal(t, spec))
	}
	return reports.BuildDealSnapshots(deals, scores)
}
