package reports

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/utils"
	"github.com/shopspring/decimal"
)

const maturityAlertRatio = 0.20

type MaturityQuarter struct {
	Quarter                 string          `json:"quarter"`
	QuarterStart            time.Time       `json:"quarter_start"`
	TotalMaturingDebt       decimal.Decimal `json:"total_maturing_debt"`
	DealsAffected           int             `json:"deals_affected"`
	WeightedDscrRequirement float64         `json:"weighted_dscr_requirement"`
	RefinanceRiskScore      int             `json:"refinance_risk_score"`
}

type DebtMaturityResponse struct {
	Quarters             []MaturityQuarter `json:"quarters"`
	TotalPortfolioDebt   decimal.Decimal   `json:"total_portfolio_debt"`
	DebtMaturing12Months decimal.Decimal   `json:"debt_maturing_12_months"`
	HasAlert             bool              `json:"has_alert"`
}

// GetDebtMaturityWall buckets outstanding financing of active deals by
// maturity quarter and scores refinance risk per quarter. It reads raw
// financing rows rather than flattened snapshots since the maturity clock
// depends on per-row dates.
func GetDebtMaturityWall(ctx context.Context) (*DebtMaturityResponse, error) {
	deals, err := models.ListDeals(ctx)
	if err != nil {
		return nil, err
	}
	return BuildDebtMaturityWall(deals, time.Now().UTC()), nil
}

func BuildDebtMaturityWall(deals []*models.Deal, now time.Time) *DebtMaturityResponse {
	type quarterAccumulator struct {
		start         time.Time
		debt          decimal.Decimal
		deals         map[int]struct{}
		dscrWeighted  decimal.Decimal
		dscrWeightSum decimal.Decimal
	}
	quarters := make(map[string]*quarterAccumulator)

	totalDebt := decimal.Zero
	maturingSoon := decimal.Zero
	horizon := now.AddDate(1, 0, 0)

	for _, deal := range deals {
		if deal.Status.IsTerminal() {
			continue
		}
		for i := range deal.FinancingTerms {
			financing := &deal.FinancingTerms[i]
			if !financing.LoanAmount.IsPositive() {
				continue
			}
			maturity := financing.MaturityDate(deal.ClosingDate)
			if maturity == nil {
				// no funded/commitment/closing date to anchor the clock
				continue
			}

			totalDebt = totalDebt.Add(financing.LoanAmount)
			if !maturity.Before(now) && !maturity.After(horizon) {
				maturingSoon = maturingSoon.Add(financing.LoanAmount)
			}

			label, start := utils.QuarterOf(*maturity)
			accumulator, ok := quarters[label]
			if !ok {
				accumulator = &quarterAccumulator{start: start, deals: make(map[int]struct{})}
				quarters[label] = accumulator
			}
			accumulator.debt = accumulator.debt.Add(financing.LoanAmount)
			accumulator.deals[deal.ID] = struct{}{}
			if financing.DscrRequirement != nil {
				accumulator.dscrWeighted = accumulator.dscrWeighted.
					Add(financing.DscrRequirement.Mul(financing.LoanAmount))
				accumulator.dscrWeightSum = accumulator.dscrWeightSum.Add(financing.LoanAmount)
			}
		}
	}

	response := &DebtMaturityResponse{
		Quarters:             []MaturityQuarter{},
		TotalPortfolioDebt:   totalDebt,
		DebtMaturing12Months: maturingSoon,
	}

	totalDebtFloat, _ := totalDebt.Float64()
	for label, accumulator := range quarters {
		quarter := MaturityQuarter{
			Quarter:           label,
			QuarterStart:      accumulator.start,
			TotalMaturingDebt: accumulator.debt,
			DealsAffected:     len(accumulator.deals),
		}
		if accumulator.dscrWeightSum.IsPositive() {
			weighted, _ := accumulator.dscrWeighted.Div(accumulator.dscrWeightSum).Float64()
			quarter.WeightedDscrRequirement = round2(weighted)
		}

		debtShare := 0.0
		if totalDebtFloat > 0 {
			quarterDebtFloat, _ := accumulator.debt.Float64()
			debtShare = quarterDebtFloat / totalDebtFloat
		}
		score := math.Round(debtShare*100*0.8 + float64(quarter.DealsAffected)*4)
		if quarter.WeightedDscrRequirement >= 1.35 {
			score += 8
		}
		quarter.RefinanceRiskScore = int(clamp(score, 0, 100))

		response.Quarters = append(response.Quarters, quarter)
	}

	sort.Slice(response.Quarters, func(i, j int) bool {
		return response.Quarters[i].QuarterStart.Before(response.Quarters[j].QuarterStart)
	})

	if totalDebtFloat > 0 {
		soonFloat, _ := maturingSoon.Float64()
		response.HasAlert = soonFloat/totalDebtFloat > maturityAlertRatio
	}
	return response
}
