package reports

import (
	"context"
	"errors"
	"sort"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/shopspring/decimal"
)

const (
	irrScoreCap        = 50.0
	neutralTriageScore = 50.0
)

type AllocationRequest struct {
	Budget   decimal.Decimal `json:"budget" binding:"required"`
	MaxDeals *int            `json:"max_deals"`
}

type AllocationCandidate struct {
	DealId            int             `json:"deal_id"`
	DealName          string          `json:"deal_name"`
	Stage             string          `json:"stage"`
	EquityRequired    decimal.Decimal `json:"equity_required"`
	LeveredIrr        *float64        `json:"levered_irr"`
	TriageScore       *float64        `json:"triage_score"`
	RiskAdjustedScore float64         `json:"risk_adjusted_score"`
	Recommended       bool            `json:"recommended"`
	AllocationAmount  decimal.Decimal `json:"allocation_amount"`
	SkipReason        string          `json:"skip_reason,omitempty"`
}

type AllocationResponse struct {
	Budget            decimal.Decimal       `json:"budget"`
	AllocatedEquity   decimal.Decimal       `json:"allocated_equity"`
	UnallocatedEquity decimal.Decimal       `json:"unallocated_equity"`
	RecommendedCount  int                   `json:"recommended_count"`
	Candidates        []AllocationCandidate `json:"candidates"`
}

// GetCapitalAllocation ranks allocatable deals by a blended return/risk
// score and greedily fills the budget in rank order. A bounded greedy, not a
// globally-optimal knapsack fill.
func GetCapitalAllocation(ctx context.Context, request *AllocationRequest) (*AllocationResponse, error) {
	if !request.Budget.IsPositive() {
		return nil, errors.New("budget must be positive")
	}
	if request.MaxDeals != nil && *request.MaxDeals <= 0 {
		return nil, errors.New("max_deals must be positive when set")
	}

	snapshots, err := LoadDealSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCapitalAllocation(snapshots, request), nil
}

func BuildCapitalAllocation(snapshots []*DealSnapshot, request *AllocationRequest) *AllocationResponse {
	response := &AllocationResponse{
		Budget:            request.Budget,
		AllocatedEquity:   decimal.Zero,
		UnallocatedEquity: request.Budget,
		Candidates:        []AllocationCandidate{},
	}

	for _, s := range snapshots {
		// Deals already exiting cannot absorb new capital.
		if s.Deal.Status.IsTerminal() || s.Deal.Status == models.PipelineStatusExitMarketed {
			continue
		}
		response.Candidates = append(response.Candidates, AllocationCandidate{
			DealId:            s.Deal.ID,
			DealName:          s.Deal.Name,
			Stage:             string(s.Deal.Status),
			EquityRequired:    s.Deal.EquityRequired,
			LeveredIrr:        s.ProForma.LeveredIRR,
			TriageScore:       s.TriageScore,
			RiskAdjustedScore: allocationScore(s.ProForma.LeveredIRR, s.TriageScore),
			AllocationAmount:  decimal.Zero,
		})
	}

	sort.Slice(response.Candidates, func(i, j int) bool {
		if response.Candidates[i].RiskAdjustedScore != response.Candidates[j].RiskAdjustedScore {
			return response.Candidates[i].RiskAdjustedScore > response.Candidates[j].RiskAdjustedScore
		}
		return response.Candidates[i].DealId < response.Candidates[j].DealId
	})

	remaining := request.Budget
	for i := range response.Candidates {
		candidate := &response.Candidates[i]
		if request.MaxDeals != nil && response.RecommendedCount >= *request.MaxDeals {
			candidate.SkipReason = "deal limit reached"
			continue
		}
		if candidate.EquityRequired.GreaterThan(remaining) {
			candidate.SkipReason = "insufficient remaining budget"
			continue
		}
		candidate.Recommended = true
		candidate.AllocationAmount = candidate.EquityRequired
		response.RecommendedCount++
		remaining = remaining.Sub(candidate.EquityRequired)
		response.AllocatedEquity = response.AllocatedEquity.Add(candidate.EquityRequired)
	}
	response.UnallocatedEquity = remaining
	return response
}

// allocationScore blends capped levered IRR with the triage score. An
// unscored deal counts as a neutral 50, an undefined IRR contributes nothing.
func allocationScore(irr *float64, triage *float64) float64 {
	score := 0.0
	if irr != nil {
		irrComponent := *irr * 100
		if irrComponent > irrScoreCap {
			irrComponent = irrScoreCap
		}
		score += irrComponent
	}
	triageComponent := neutralTriageScore
	if triage != nil {
		triageComponent = *triage
	}
	return round2(score + triageComponent/2)
}
