package reports_test

import (
	"testing"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/models/reports"
)

func TestSnapshotDefaultAssumptions(t *testing.T) {
	snapshots := makeSnapshots(t, nil, dealSpec{id: 1, acres: "2"})
	snapshot := snapshots[0]

	// 2 acres at 30% lot coverage
	want := 2 * 43560 * 0.30
	if snapshot.Assumptions.BuildableSf != want {
		t.Fatalf("buildable sf = %v, want %v", snapshot.Assumptions.BuildableSf, want)
	}
	if snapshot.AcreageTotal != 2 {
		t.Fatalf("acreage = %v, want 2", snapshot.AcreageTotal)
	}
	if snapshot.JurisdictionName != "Unknown" {
		t.Fatalf("jurisdiction = %q, want Unknown fallback", snapshot.JurisdictionName)
	}
}

func TestSnapshotBuildableFloor(t *testing.T) {
	// tiny parcel falls below the 5,000 sf floor
	snapshots := makeSnapshots(t, nil, dealSpec{id: 1, acres: "0.1"})
	if got := snapshots[0].Assumptions.BuildableSf; got != 5000 {
		t.Fatalf("buildable sf = %v, want the 5000 floor", got)
	}
}

func TestSnapshotStoredAssumptionsWin(t *testing.T) {
	deal := makeDeal(t, dealSpec{id: 1, acres: "10"})
	deal.AssumptionsJson = []byte(`{"buildable_sf":12345,"rent_per_sf_annual":20,"cost_per_sf":150,
		"vacancy_rate_pct":5,"collection_loss_pct":1,"opex_ratio_pct":35,"loan_to_cost_pct":60,
		"interest_rate_pct":6,"amort_years":30,"hold_period_years":5,"rent_growth_pct":2,
		"exit_cap_rate_pct":7,"cost_of_sale_pct":2}`)

	snapshots := reports.BuildDealSnapshots([]*models.Deal{deal}, nil)
	if got := snapshots[0].Assumptions.BuildableSf; got != 12345 {
		t.Fatalf("buildable sf = %v, want the stored value", got)
	}
}

func TestSnapshotGarbageAssumptionsFallBack(t *testing.T) {
	deal := makeDeal(t, dealSpec{id: 1, acres: "2"})
	deal.AssumptionsJson = []byte(`{not json`)

	snapshots := reports.BuildDealSnapshots([]*models.Deal{deal}, nil)
	if got := snapshots[0].Assumptions.BuildableSf; got != 2*43560*0.30 {
		t.Fatalf("buildable sf = %v, want synthesized defaults", got)
	}
}

func TestSnapshotTriageScoreAttached(t *testing.T) {
	snapshots := makeSnapshots(t, map[int]float64{1: 72.5},
		dealSpec{id: 1, acres: "2"}, dealSpec{id: 2, acres: "2"})

	if snapshots[0].TriageScore == nil || *snapshots[0].TriageScore != 72.5 {
		t.Fatalf("score = %v, want 72.5", snapshots[0].TriageScore)
	}
	if snapshots[1].TriageScore != nil {
		t.Fatalf("score = %v, want nil for the unscored deal", *snapshots[1].TriageScore)
	}
	if got := snapshots[0].RiskTier(); got != "B" {
		t.Fatalf("tier = %q, want B", got)
	}
}
