package reports_test

import (
	"testing"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/models/reports"
)

func TestCapitalDeploymentRollup(t *testing.T) {
	deals := []*models.Deal{
		makeDeal(t, dealSpec{id: 1, status: models.PipelineStatusActive, acres: "4"}),
		makeDeal(t, dealSpec{id: 2, status: models.PipelineStatusKilled}),
	}
	entries := []*models.CapitalDeploymentEntry{
		{DealId: 1, Stage: "DUE_DILIGENCE", Committed: dec(t, "100000"), Deployed: dec(t, "60000")},
		{DealId: 1, Stage: "CLOSING", Committed: dec(t, "400000"), Deployed: dec(t, "400000")},
		{DealId: 2, Stage: "DUE_DILIGENCE", Committed: dec(t, "50000"), Deployed: dec(t, "50000"), NonRecoverable: dec(t, "35000")},
	}

	result := reports.BuildCapitalDeployment(entries, deals)

	if !result.TotalCommitted.Equal(dec(t, "550000")) {
		t.Fatalf("committed = %s, want 550000", result.TotalCommitted)
	}
	if !result.TotalDeployed.Equal(dec(t, "510000")) {
		t.Fatalf("deployed = %s, want 510000", result.TotalDeployed)
	}
	if !result.SunkCostKilledDeals.Equal(dec(t, "35000")) {
		t.Fatalf("sunk cost = %s, want the killed deal's non-recoverable", result.SunkCostKilledDeals)
	}

	if len(result.StageRollup) != 2 {
		t.Fatalf("rollup = %+v, want 2 stages", result.StageRollup)
	}
	// sorted by committed descending
	if result.StageRollup[0].Stage != "CLOSING" {
		t.Fatalf("top stage = %q, want CLOSING", result.StageRollup[0].Stage)
	}
	if result.StageRollup[0].EfficiencyPct != 100 {
		t.Fatalf("closing efficiency = %v, want 100", result.StageRollup[0].EfficiencyPct)
	}
	dd := result.StageRollup[1]
	if dd.EntryCount != 2 || !dd.Committed.Equal(dec(t, "150000")) {
		t.Fatalf("due diligence rollup = %+v", dd)
	}

	// only the active deal's parcels and acreage count
	if !result.CostPerActiveParcel.Equal(dec(t, "510000")) {
		t.Fatalf("cost per active parcel = %s, want 510000", result.CostPerActiveParcel)
	}
	if !result.CostPerAcre.Equal(dec(t, "127500")) {
		t.Fatalf("cost per acre = %s, want 127500", result.CostPerAcre)
	}
}

func TestCapitalDeploymentNoEntries(t *testing.T) {
	deals := []*models.Deal{makeDeal(t, dealSpec{id: 1, acres: "2"})}

	result := reports.BuildCapitalDeployment(nil, deals)
	if !result.TotalCommitted.IsZero() || !result.TotalDeployed.IsZero() {
		t.Fatalf("totals = %s / %s, want zero", result.TotalCommitted, result.TotalDeployed)
	}
	if len(result.StageRollup) != 0 {
		t.Fatalf("rollup = %+v, want empty", result.StageRollup)
	}
	if result.DataAvailable {
		t.Fatal("no entries must report data unavailable")
	}
	if !result.CostPerAcre.IsZero() {
		t.Fatalf("cost per acre = %s, want zero with no deployment", result.CostPerAcre)
	}
}

func TestCapitalDeploymentZeroCommittedEfficiency(t *testing.T) {
	entries := []*models.CapitalDeploymentEntry{
		{DealId: 1, Stage: "INTAKE", Deployed: dec(t, "1000")},
	}
	result := reports.BuildCapitalDeployment(entries, nil)
	if result.StageRollup[0].EfficiencyPct != 0 {
		t.Fatalf("efficiency with zero committed = %v, want 0", result.StageRollup[0].EfficiencyPct)
	}
}
