package reports_test

import (
	"math"
	"testing"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/models/reports"
)

func TestStressTestZeroShocksMatchBaseline(t *testing.T) {
	snapshots := makeSnapshots(t, nil,
		dealSpec{id: 1, acres: "3"},
		dealSpec{id: 2, acres: "8"},
	)

	result := reports.BuildStressTest(snapshots, reports.StressScenario{Name: "noop"})

	for _, deal := range result.Deals {
		if (deal.BaseIrr == nil) != (deal.StressedIrr == nil) {
			t.Fatalf("deal %d irr definedness changed under zero shocks", deal.DealId)
		}
		if deal.BaseIrr != nil && math.Abs(*deal.BaseIrr-*deal.StressedIrr) > 1e-9 {
			t.Fatalf("deal %d stressed irr %v != base irr %v under zero shocks",
				deal.DealId, *deal.StressedIrr, *deal.BaseIrr)
		}
	}
	if result.AvgBaseIrr != nil && math.Abs(*result.AvgBaseIrr-*result.AvgStressedIrr) > 1e-9 {
		t.Fatalf("avg stressed irr %v != avg base irr %v", *result.AvgStressedIrr, *result.AvgBaseIrr)
	}
}

func TestStressTestRateShockHurtsIrr(t *testing.T) {
	snapshots := makeSnapshots(t, nil, dealSpec{id: 1, acres: "3"})

	scenario, ok := reports.StressScenarioPreset("rate_shock")
	if !ok {
		t.Fatal("rate_shock preset missing")
	}
	result := reports.BuildStressTest(snapshots, scenario)

	deal := result.Deals[0]
	if deal.BaseIrr == nil || deal.StressedIrr == nil {
		t.Fatal("expected defined irr on both sides")
	}
	if *deal.StressedIrr >= *deal.BaseIrr {
		t.Fatalf("stressed irr %v not below base %v under a rate shock", *deal.StressedIrr, *deal.BaseIrr)
	}
}

func TestStressTestSkipsTerminalDeals(t *testing.T) {
	snapshots := makeSnapshots(t, nil,
		dealSpec{id: 1, acres: "3"},
		dealSpec{id: 2, acres: "3", status: models.PipelineStatusKilled},
	)

	result := reports.BuildStressTest(snapshots, reports.StressScenario{Name: "noop"})
	if len(result.Deals) != 1 || result.Deals[0].DealId != 1 {
		t.Fatalf("deals = %+v, want only the active deal", result.Deals)
	}
}

func TestStressTestAtRiskFirst(t *testing.T) {
	// healthy stored assumptions vs a thin deal the downturn breaks
	healthy := `{"buildable_sf":20000,"rent_per_sf_annual":30,"vacancy_rate_pct":5,
		"collection_loss_pct":1,"opex_ratio_pct":30,"cost_per_sf":100,"loan_to_cost_pct":50,
		"interest_rate_pct":5,"amort_years":30,"hold_period_years":5,"rent_growth_pct":3,
		"exit_cap_rate_pct":7,"cost_of_sale_pct":2}`

	healthyDeal := makeDeal(t, dealSpec{id: 1})
	healthyDeal.AssumptionsJson = []byte(healthy)
	thinDeal := makeDeal(t, dealSpec{id: 2, acres: "3"})

	snapshots := reports.BuildDealSnapshots([]*models.Deal{healthyDeal, thinDeal}, nil)

	scenario, _ := reports.StressScenarioPreset("stagflation")
	result := reports.BuildStressTest(snapshots, scenario)

	if result.AtRiskCount == 0 {
		t.Fatal("stagflation should put the thin deal at risk")
	}
	for i, deal := range result.Deals {
		if deal.AtRisk && i > 0 && !result.Deals[i-1].AtRisk {
			t.Fatalf("at-risk deal %d sorted after a healthy one", deal.DealId)
		}
	}
}

func TestStressScenarioPresets(t *testing.T) {
	for _, name := range []string{"rate_shock", "downturn", "stagflation"} {
		scenario, ok := reports.StressScenarioPreset(name)
		if !ok {
			t.Fatalf("preset %q missing", name)
		}
		if scenario.Name != name {
			t.Fatalf("preset %q carries name %q", name, scenario.Name)
		}
	}
	if _, ok := reports.StressScenarioPreset("asteroid"); ok {
		t.Fatal("unknown preset resolved")
	}
}
