package reports

import (
	"context"
	"fmt"
	"sort"

	"github.com/gallagherpc/deals_backend/models"
	"github.com/shopspring/decimal"
)

const hhiAlertThreshold = 0.5

type ConcentrationBucket struct {
	Label    string          `json:"label"`
	Exposure decimal.Decimal `json:"exposure"`
	SharePct float64         `json:"share_pct"`
}

type DimensionConcentration struct {
	Dimension  string                `json:"dimension"`
	Buckets    []ConcentrationBucket `json:"buckets"`
	Hhi        float64               `json:"hhi"`
	Band       string                `json:"band"`
	TopBuckets []ConcentrationBucket `json:"top_buckets,omitempty"`
}

type ConcentrationResponse struct {
	Geography DimensionConcentration `json:"geography"`
	Sku       DimensionConcentration `json:"sku"`
	Vintage   DimensionConcentration `json:"vintage"`
	RiskTier  DimensionConcentration `json:"risk_tier"`
	Lender    DimensionConcentration `json:"lender"`
	HasAlert  bool                   `json:"has_alert"`
}

// GetPortfolioConcentration reports exposure concentration and HHI per
// dimension over active deals.
func GetPortfolioConcentration(ctx context.Context) (*ConcentrationResponse, error) {
	snapshots, err := LoadDealSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	return BuildConcentration(snapshots), nil
}

func BuildConcentration(snapshots []*DealSnapshot) *ConcentrationResponse {
	active := activeSnapshots(snapshots)

	one := decimal.NewFromInt(1)
	geography := make(map[string]decimal.Decimal)
	sku := make(map[string]decimal.Decimal)
	vintage := make(map[string]decimal.Decimal)
	riskTier := make(map[string]decimal.Decimal)
	lender := make(map[string]decimal.Decimal)

	for _, s := range active {
		geography[s.JurisdictionName] = geography[s.JurisdictionName].Add(one)
		sku[string(s.Deal.Sku)] = sku[string(s.Deal.Sku)].Add(one)
		year := fmt.Sprint(s.Deal.CreatedAt.Year())
		vintage[year] = vintage[year].Add(one)
		riskTier[s.RiskTier()] = riskTier[s.RiskTier()].Add(one)

		for _, financing := range s.Deal.FinancingTerms {
			if financing.LoanAmount.IsPositive() {
				bucket := financing.LenderBucket()
				lender[bucket] = lender[bucket].Add(financing.LoanAmount)
			}
		}
	}

	// No loan exposure anywhere: fall back to unit-count weighting so the
	// lender dimension still describes the portfolio.
	if len(lender) == 0 {
		for range active {
			lender[models.UnspecifiedLender] = lender[models.UnspecifiedLender].Add(one)
		}
	}

	response := &ConcentrationResponse{
		Geography: buildDimension("geography", geography, true),
		Sku:       buildDimension("sku", sku, true),
		Vintage:   buildDimension("vintage", vintage, false),
		RiskTier:  buildDimension("risk_tier", riskTier, false),
		Lender:    buildDimension("lender", lender, true),
	}
	response.HasAlert = response.Geography.Hhi > hhiAlertThreshold ||
		response.Sku.Hhi > hhiAlertThreshold ||
		response.Lender.Hhi > hhiAlertThreshold
	return response
}

func buildDimension(name string, exposures map[string]decimal.Decimal, alertDimension bool) DimensionConcentration {
	dimension := DimensionConcentration{
		Dimension: name,
		Buckets:   []ConcentrationBucket{},
	}

	total := decimal.Zero
	for _, exposure := range exposures {
		total = total.Add(exposure)
	}
	if !total.IsPositive() {
		dimension.Band = hhiBand(0)
		return dimension
	}

	totalFloat, _ := total.Float64()
	hhi := 0.0
	for label, exposure := range exposures {
		exposureFloat, _ := exposure.Float64()
		share := exposureFloat / totalFloat
		hhi += share * share
		dimension.Buckets = append(dimension.Buckets, ConcentrationBucket{
			Label:    label,
			Exposure: exposure,
			SharePct: round2(share * 100),
		})
	}
	sort.Slice(dimension.Buckets, func(i, j int) bool {
		if dimension.Buckets[i].SharePct != dimension.Buckets[j].SharePct {
			return dimension.Buckets[i].SharePct > dimension.Buckets[j].SharePct
		}
		return dimension.Buckets[i].Label < dimension.Buckets[j].Label
	})

	dimension.Hhi = round3(hhi)
	dimension.Band = hhiBand(dimension.Hhi)
	if alertDimension {
		top := len(dimension.Buckets)
		if top > 3 {
			top = 3
		}
		dimension.TopBuckets = dimension.Buckets[:top]
	}
	return dimension
}

func hhiBand(hhi float64) string {
	switch {
	case hhi > 0.5:
		return "red"
	case hhi >= 0.25:
		return "yellow"
	default:
		return "green"
	}
}
