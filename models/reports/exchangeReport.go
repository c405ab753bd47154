package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gallagherpc/deals_backend/finance"
	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/utils"
	"github.com/shopspring/decimal"
)

const exchangeMinimumScore = 25

type ExchangeCandidate struct {
	DealId         int             `json:"deal_id"`
	DealName       string          `json:"deal_name"`
	Sku            string          `json:"sku"`
	Stage          string          `json:"stage"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	MatchScore     int             `json:"match_score"`
	MatchReasons   []string        `json:"match_reasons"`
}

type ExchangeResponse struct {
	DispositionDealId  int                       `json:"disposition_deal_id"`
	DispositionName    string                    `json:"disposition_name"`
	EstimatedSalePrice decimal.Decimal           `json:"estimated_sale_price"`
	Deadlines          finance.ExchangeDeadlines `json:"deadlines"`
	Candidates         []ExchangeCandidate       `json:"candidates"`
}

// GetExchangeMatches ranks replacement-property candidates for a 1031
// exchange out of the given disposition deal. Deadlines run from the
// disposition's closing date; an unclosed deal gets provisional deadlines
// from today so the planning view still renders.
func GetExchangeMatches(ctx context.Context, dispositionDealId int) (*ExchangeResponse, error) {
	snapshots, err := LoadDealSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	return BuildExchangeMatches(snapshots, dispositionDealId, time.Now().UTC())
}

func BuildExchangeMatches(snapshots []*DealSnapshot, dispositionDealId int, now time.Time) (*ExchangeResponse, error) {
	var disposition *DealSnapshot
	for _, s := range snapshots {
		if s.Deal.ID == dispositionDealId {
			disposition = s
			break
		}
	}
	if disposition == nil {
		return nil, utils.ErrorRecordNotFound
	}

	salePrice := decimal.NewFromFloat(disposition.ProForma.ExitAnalysis.EstimatedSalePrice).Round(2)

	anchor := now
	if disposition.Deal.ClosingDate != nil {
		anchor = *disposition.Deal.ClosingDate
	}

	response := &ExchangeResponse{
		DispositionDealId:  disposition.Deal.ID,
		DispositionName:    disposition.Deal.Name,
		EstimatedSalePrice: salePrice,
		Deadlines:          finance.Calculate1031Deadlines(anchor),
		Candidates:         []ExchangeCandidate{},
	}

	for _, s := range snapshots {
		if s.Deal.ID == disposition.Deal.ID || s.Deal.Status.IsTerminal() {
			continue
		}
		candidate := scoreExchangeCandidate(disposition, s, salePrice)
		if candidate.MatchScore >= exchangeMinimumScore {
			response.Candidates = append(response.Candidates, candidate)
		}
	}

	sort.Slice(response.Candidates, func(i, j int) bool {
		if response.Candidates[i].MatchScore != response.Candidates[j].MatchScore {
			return response.Candidates[i].MatchScore > response.Candidates[j].MatchScore
		}
		return response.Candidates[i].DealId < response.Candidates[j].DealId
	})
	return response, nil
}

func scoreExchangeCandidate(disposition, candidate *DealSnapshot, salePrice decimal.Decimal) ExchangeCandidate {
	value := candidate.Deal.PurchasePrice
	if !value.IsPositive() {
		value = candidate.ProForma.AcquisitionBasis
	}

	result := ExchangeCandidate{
		DealId:         candidate.Deal.ID,
		DealName:       candidate.Deal.Name,
		Sku:            string(candidate.Deal.Sku),
		Stage:          string(candidate.Deal.Status),
		EstimatedValue: value,
		MatchReasons:   []string{},
	}

	if salePrice.IsPositive() && value.IsPositive() {
		ratio, _ := value.Div(salePrice).Float64()
		switch {
		case ratio >= 1.0:
			result.MatchScore += 40
			result.MatchReasons = append(result.MatchReasons,
				"value covers full sale price, defers all gain")
		case ratio >= 0.75:
			result.MatchScore += 25
			result.MatchReasons = append(result.MatchReasons,
				fmt.Sprintf("value covers %.0f%% of sale price", ratio*100))
		case ratio >= 0.50:
			result.MatchScore += 10
			result.MatchReasons = append(result.MatchReasons,
				fmt.Sprintf("value covers only %.0f%% of sale price, partial deferral", ratio*100))
		}
	}

	if candidate.Deal.Sku == disposition.Deal.Sku {
		result.MatchScore += 20
		result.MatchReasons = append(result.MatchReasons, "same product type")
	} else {
		result.MatchScore += 15
		result.MatchReasons = append(result.MatchReasons,
			"different product type, still qualifies as like-kind")
	}

	if earlyPipelineStage(candidate.Deal.Status) {
		result.MatchScore += 20
		result.MatchReasons = append(result.MatchReasons,
			"early pipeline stage, time to close within the 180-day window")
	} else {
		result.MatchScore += 10
		result.MatchReasons = append(result.MatchReasons, "advanced pipeline stage")
	}

	if candidate.Deal.JurisdictionId != disposition.Deal.JurisdictionId {
		result.MatchScore += 10
		result.MatchReasons = append(result.MatchReasons, "diversifies geography")
	}

	return result
}

func earlyPipelineStage(status models.PipelineStatus) bool {
	switch status {
	case models.PipelineStatusIntake, models.PipelineStatusScreening,
		models.PipelineStatusUnderwriting, models.PipelineStatusLoi:
		return true
	}
	return false
}
