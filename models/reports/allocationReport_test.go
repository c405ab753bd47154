package reports_test

import (
	"testing"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/models/reports"
)

func TestAllocationBudgetInvariant(t *testing.T) {
	snapshots := makeSnapshots(t, map[int]float64{1: 90, 2: 70, 3: 40},
		dealSpec{id: 1, status: models.PipelineStatusUnderwriting, equity: "400000", acres: "5"},
		dealSpec{id: 2, status: models.PipelineStatusLoi, equity: "350000", acres: "4"},
		dealSpec{id: 3, status: models.PipelineStatusIntake, equity: "500000", acres: "6"},
	)

	request := &reports.AllocationRequest{Budget: dec(t, "800000")}
	result := reports.BuildCapitalAllocation(snapshots, request)

	if !result.AllocatedEquity.Add(result.UnallocatedEquity).Equal(request.Budget) {
		t.Fatalf("allocated %s + unallocated %s != budget %s",
			result.AllocatedEquity, result.UnallocatedEquity, request.Budget)
	}
	if result.AllocatedEquity.GreaterThan(request.Budget) {
		t.Fatalf("allocated %s exceeds budget", result.AllocatedEquity)
	}
}

func TestAllocationGreedyOrder(t *testing.T) {
	snapshots := makeSnapshots(t, map[int]float64{1: 90, 2: 20},
		dealSpec{id: 1, equity: "600000", acres: "5"},
		dealSpec{id: 2, equity: "300000", acres: "5"},
	)

	request := &reports.AllocationRequest{Budget: dec(t, "650000")}
	result := reports.BuildCapitalAllocation(snapshots, request)

	if result.Candidates[0].DealId != 1 {
		t.Fatalf("top candidate = %d, want the higher-scored deal", result.Candidates[0].DealId)
	}
	if !result.Candidates[0].Recommended {
		t.Fatal("top candidate within budget must be recommended")
	}
	// second deal no longer fits after the first takes 600k
	if result.Candidates[1].Recommended {
		t.Fatalf("candidate %+v recommended beyond remaining budget", result.Candidates[1])
	}
	if result.Candidates[1].SkipReason != "insufficient remaining budget" {
		t.Fatalf("skip reason = %q", result.Candidates[1].SkipReason)
	}
	if !result.Candidates[0].AllocationAmount.Equal(dec(t, "600000")) {
		t.Fatalf("allocation amount = %s, want equity required", result.Candidates[0].AllocationAmount)
	}
}

func TestAllocationMaxDealsCap(t *testing.T) {
	snapshots := makeSnapshots(t, map[int]float64{1: 90, 2: 80, 3: 70},
		dealSpec{id: 1, equity: "100000", acres: "5"},
		dealSpec{id: 2, equity: "100000", acres: "5"},
		dealSpec{id: 3, equity: "100000", acres: "5"},
	)

	request := &reports.AllocationRequest{Budget: dec(t, "1000000"), MaxDeals: intPtr(2)}
	result := reports.BuildCapitalAllocation(snapshots, request)

	if result.RecommendedCount != 2 {
		t.Fatalf("recommended = %d, want 2", result.RecommendedCount)
	}
	if result.Candidates[2].SkipReason != "deal limit reached" {
		t.Fatalf("skip reason = %q", result.Candidates[2].SkipReason)
	}
}

func TestAllocationExcludesExitingDeals(t *testing.T) {
	snapshots := makeSnapshots(t, nil,
		dealSpec{id: 1, status: models.PipelineStatusActive, equity: "100000", acres: "5"},
		dealSpec{id: 2, status: models.PipelineStatusExitMarketed, equity: "100000", acres: "5"},
		dealSpec{id: 3, status: models.PipelineStatusKilled, equity: "100000", acres: "5"},
		dealSpec{id: 4, status: models.PipelineStatusExited, equity: "100000", acres: "5"},
	)

	result := reports.BuildCapitalAllocation(snapshots, &reports.AllocationRequest{Budget: dec(t, "500000")})
	if len(result.Candidates) != 1 || result.Candidates[0].DealId != 1 {
		t.Fatalf("candidates = %+v, want only the active deal", result.Candidates)
	}
}

func TestAllocationScoreNeutralWhenUnscored(t *testing.T) {
	snapshots := makeSnapshots(t, nil, dealSpec{id: 1, equity: "100000", acres: "5"})

	result := reports.BuildCapitalAllocation(snapshots, &reports.AllocationRequest{Budget: dec(t, "500000")})
	candidate := result.Candidates[0]
	if candidate.TriageScore != nil {
		t.Fatal("fixture should be unscored")
	}
	if candidate.LeveredIrr == nil {
		t.Fatal("fixture should carry an irr")
	}

	// unscored contributes the neutral 25 points; irr component capped at 50
	irrComponent := *candidate.LeveredIrr * 100
	if irrComponent > 50 {
		irrComponent = 50
	}
	want := irrComponent + 25
	if diff := candidate.RiskAdjustedScore - want; diff > 0.01 || diff < -0.01 {
		t.Fatalf("score = %v, want %v", candidate.RiskAdjustedScore, want)
	}
}
