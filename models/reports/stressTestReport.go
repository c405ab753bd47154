package reports

import (
	"context"
	"errors"
	"sort"

	"github.com/gallagherpc/deals_backend/finance"
)

// StressScenario shocks are quoted the way the investment committee quotes
// them: rate and exit-cap moves in basis points, vacancy in percentage
// points, rent decline as a percentage haircut.
type StressScenario struct {
	Name            string  `json:"name"`
	RateShockBps    float64 `json:"rate_shock_bps"`
	VacancyShockPts float64 `json:"vacancy_shock_pts"`
	RentDeclinePct  float64 `json:"rent_decline_pct"`
	ExitCapShockBps float64 `json:"exit_cap_shock_bps"`
}

var stressPresets = map[string]StressScenario{
	"rate_shock": {
		Name:            "rate_shock",
		RateShockBps:    200,
		ExitCapShockBps: 100,
	},
	"downturn": {
		Name:            "downturn",
		VacancyShockPts: 5,
		RentDeclinePct:  10,
		ExitCapShockBps: 150,
	},
	"stagflation": {
		Name:            "stagflation",
		RateShockBps:    300,
		VacancyShockPts: 3,
		RentDeclinePct:  5,
		ExitCapShockBps: 200,
	},
}

func StressScenarioPreset(name string) (StressScenario, bool) {
	scenario, ok := stressPresets[name]
	return scenario, ok
}

type StressedDeal struct {
	DealId           int      `json:"deal_id"`
	DealName         string   `json:"deal_name"`
	BaseIrr          *float64 `json:"base_irr"`
	StressedIrr      *float64 `json:"stressed_irr"`
	BaseDscr         *float64 `json:"base_dscr"`
	StressedDscr     *float64 `json:"stressed_dscr"`
	StressedMultiple *float64 `json:"stressed_multiple"`
	AtRisk           bool     `json:"at_risk"`
}

type StressTestResponse struct {
	Scenario       StressScenario `json:"scenario"`
	Deals          []StressedDeal `json:"deals"`
	AtRiskCount    int            `json:"at_risk_count"`
	AvgBaseIrr     *float64       `json:"avg_base_irr"`
	AvgStressedIrr *float64       `json:"avg_stressed_irr"`
}

// GetStressTest re-runs every active deal's pro-forma under the scenario's
// shocked assumptions and flags deals whose stressed metrics break coverage.
func GetStressTest(ctx context.Context, scenario *StressScenario) (*StressTestResponse, error) {
	if scenario == nil {
		return nil, errors.New("scenario is required")
	}
	snapshots, err := LoadDealSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	return BuildStressTest(snapshots, *scenario), nil
}

func BuildStressTest(snapshots []*DealSnapshot, scenario StressScenario) *StressTestResponse {
	response := &StressTestResponse{
		Scenario: scenario,
		Deals:    []StressedDeal{},
	}

	baseIrrs := []float64{}
	stressedIrrs := []float64{}

	for _, s := range activeSnapshots(snapshots) {
		stressed := finance.ComputeProForma(applyShocks(s.Assumptions, scenario))

		deal := StressedDeal{
			DealId:           s.Deal.ID,
			DealName:         s.Deal.Name,
			BaseIrr:          s.ProForma.LeveredIRR,
			StressedIrr:      stressed.LeveredIRR,
			BaseDscr:         s.ProForma.Dscr,
			StressedDscr:     stressed.Dscr,
			StressedMultiple: stressed.EquityMultiple,
		}
		deal.AtRisk = (stressed.Dscr != nil && *stressed.Dscr < 1.0) ||
			(stressed.LeveredIRR != nil && *stressed.LeveredIRR < 0) ||
			(stressed.EquityMultiple != nil && *stressed.EquityMultiple < 1.0)
		if deal.AtRisk {
			response.AtRiskCount++
		}

		if deal.BaseIrr != nil && deal.StressedIrr != nil {
			baseIrrs = append(baseIrrs, *deal.BaseIrr)
			stressedIrrs = append(stressedIrrs, *deal.StressedIrr)
		}
		response.Deals = append(response.Deals, deal)
	}

	sort.SliceStable(response.Deals, func(i, j int) bool {
		return response.Deals[i].AtRisk && !response.Deals[j].AtRisk
	})

	if len(baseIrrs) > 0 {
		avgBase := mean(baseIrrs)
		avgStressed := mean(stressedIrrs)
		response.AvgBaseIrr = &avgBase
		response.AvgStressedIrr = &avgStressed
	}
	return response
}

// applyShocks copies the baseline so repeated scenarios never compound.
func applyShocks(a finance.ProFormaAssumptions, scenario StressScenario) finance.ProFormaAssumptions {
	a.InterestRatePct += scenario.RateShockBps / 100
	a.VacancyRatePct += scenario.VacancyShockPts
	a.RentPerSfAnnual *= 1 - scenario.RentDeclinePct/100
	a.ExitCapRatePct += scenario.ExitCapShockBps / 100
	return a
}
