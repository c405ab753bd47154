package finance

import (
	"github.com/shopspring/decimal"
)

// ProFormaAssumptions drives the per-deal financial model. Rates are held
// as percent values (6.5 means 6.5%) so shock arithmetic stays in the units
// the investment team quotes.
type ProFormaAssumptions struct {
	BuildableSf       float64 `json:"buildable_sf"`
	RentPerSfAnnual   float64 `json:"rent_per_sf_annual"`
	VacancyRatePct    float64 `json:"vacancy_rate_pct"`
	CollectionLossPct float64 `json:"collection_loss_pct"`
	OpexRatioPct      float64 `json:"opex_ratio_pct"`
	CostPerSf         float64 `json:"cost_per_sf"`
	LoanToCostPct     float64 `json:"loan_to_cost_pct"`
	InterestRatePct   float64 `json:"interest_rate_pct"`
	AmortYears        int     `json:"amort_years"`
	HoldPeriodYears   int     `json:"hold_period_years"`
	RentGrowthPct     float64 `json:"rent_growth_pct"`
	ExitCapRatePct    float64 `json:"exit_cap_rate_pct"`
	CostOfSalePct     float64 `json:"cost_of_sale_pct"`
}

type ExitAnalysis struct {
	ExitYearNoi        float64 `json:"exit_year_noi"`
	ExitValue          float64 `json:"exit_value"`
	CostOfSale         float64 `json:"cost_of_sale"`
	EstimatedSalePrice float64 `json:"estimated_sale_price"`
	NetSaleProceeds    float64 `json:"net_sale_proceeds"`
}

// ProFormaResult carries the outputs the analytics engine consumes. IRR,
// DSCR and equity multiple are nil when the capital structure leaves them
// undefined (no equity, no debt, or cash flows that never change sign).
type ProFormaResult struct {
	LeveredIRR       *float64        `json:"levered_irr"`
	GoingInCapRate   *float64        `json:"going_in_cap_rate"`
	Dscr             *float64        `json:"dscr"`
	EquityMultiple   *float64        `json:"equity_multiple"`
	AcquisitionBasis decimal.Decimal `json:"acquisition_basis"`
	ExitAnalysis     ExitAnalysis    `json:"exit_analysis"`
}

// ComputeProForma is a pure function: the analytics engine re-runs it under
// baseline and shocked assumptions and only compares outputs.
func ComputeProForma(a ProFormaAssumptions) ProFormaResult {
	pgi := a.BuildableSf * a.RentPerSfAnnual
	egi := pgi * (1 - (a.VacancyRatePct+a.CollectionLossPct)/100)
	noi := egi * (1 - a.OpexRatioPct/100)

	totalCost := a.BuildableSf * a.CostPerSf
	loan := totalCost * a.LoanToCostPct / 100
	equity := totalCost - loan

	result := ProFormaResult{
		AcquisitionBasis: decimal.NewFromFloat(totalCost).Round(2),
	}

	if totalCost > 0 {
		capRate := noi / totalCost
		result.GoingInCapRate = &capRate
	}

	annualDebtService := MonthlyPayment(loan, a.InterestRatePct/100, a.AmortYears) * 12
	if loan > 0 && annualDebtService > 0 {
		dscr := noi / annualDebtService
		result.Dscr = &dscr
	}

	hold := a.HoldPeriodYears
	if hold <= 0 {
		hold = 5
	}

	growth := 1 + a.RentGrowthPct/100
	yearNoi := noi
	cashFlows := make([]float64, 0, hold+1)
	cashFlows = append(cashFlows, -equity)
	totalDistributions := 0.0
	for year := 1; year <= hold; year++ {
		cf := yearNoi - annualDebtService
		cashFlows = append(cashFlows, cf)
		totalDistributions += cf
		yearNoi *= growth
	}

	exit := ExitAnalysis{ExitYearNoi: yearNoi}
	if a.ExitCapRatePct > 0 {
		exit.ExitValue = yearNoi / (a.ExitCapRatePct / 100)
	}
	exit.CostOfSale = exit.ExitValue * a.CostOfSalePct / 100
	exit.EstimatedSalePrice = exit.ExitValue
	exit.NetSaleProceeds = exit.ExitValue - exit.CostOfSale -
		LoanBalance(loan, a.InterestRatePct/100, a.AmortYears, hold*12)
	result.ExitAnalysis = exit

	cashFlows[len(cashFlows)-1] += exit.NetSaleProceeds
	totalDistributions += exit.NetSaleProceeds

	if equity > 0 {
		result.LeveredIRR = Irr(cashFlows)
		multiple := totalDistributions / equity
		result.EquityMultiple = &multiple
	}

	return result
}
