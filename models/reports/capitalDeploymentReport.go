package reports

import (
	"context"
	"errors"
	"sort"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/models"
	"github.com/gallagherpc/deals_backend/utils"
	_ "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

type CapitalStageRollup struct {
	Stage          string          `json:"stage"`
	Committed      decimal.Decimal `json:"committed"`
	Deployed       decimal.Decimal `json:"deployed"`
	NonRecoverable decimal.Decimal `json:"non_recoverable"`
	EntryCount     int             `json:"entry_count"`
	EfficiencyPct  float64         `json:"efficiency_pct"`
}

type CapitalDeploymentResponse struct {
	TotalCommitted      decimal.Decimal      `json:"total_committed"`
	TotalDeployed       decimal.Decimal      `json:"total_deployed"`
	TotalNonRecoverable decimal.Decimal      `json:"total_non_recoverable"`
	SunkCostKilledDeals decimal.Decimal      `json:"sunk_cost_killed_deals"`
	StageRollup         []CapitalStageRollup `json:"stage_rollup"`
	CostPerActiveParcel decimal.Decimal      `json:"cost_per_active_parcel"`
	CostPerAcre         decimal.Decimal      `json:"cost_per_acre"`
	DataAvailable       bool                 `json:"data_available"`
}

// GetCapitalDeployment aggregates committed vs deployed capital per pipeline
// stage and attributes non-recoverable spend on killed deals as sunk cost.
// The capital ledger table is optional infrastructure; when it does not
// exist the tracker reports zeroed metrics instead of failing.
func GetCapitalDeployment(ctx context.Context) (*CapitalDeploymentResponse, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	deals, err := models.ListDeals(ctx)
	if err != nil {
		return nil, err
	}

	var entries []*models.CapitalDeploymentEntry
	db := config.GetDB()
	err = db.WithContext(ctx).
		Raw("SELECT * FROM "+models.CapitalDeploymentEntryTable+" WHERE organization_id = ?", organizationId).
		Scan(&entries).Error
	if err != nil {
		if !utils.IsMissingTableError(err, models.CapitalDeploymentEntryTable) {
			return nil, err
		}
		config.LogWarn(config.GetLogger(), "reports", "GetCapitalDeployment",
			"capital ledger table missing, reporting zeroed deployment metrics", err)
		entries = nil
	}

	return BuildCapitalDeployment(entries, deals), nil
}

func BuildCapitalDeployment(entries []*models.CapitalDeploymentEntry, deals []*models.Deal) *CapitalDeploymentResponse {
	response := &CapitalDeploymentResponse{
		TotalCommitted:      decimal.Zero,
		TotalDeployed:       decimal.Zero,
		TotalNonRecoverable: decimal.Zero,
		SunkCostKilledDeals: decimal.Zero,
		StageRollup:         []CapitalStageRollup{},
		CostPerActiveParcel: decimal.Zero,
		CostPerAcre:         decimal.Zero,
		DataAvailable:       len(entries) > 0,
	}

	dealById := make(map[int]*models.Deal, len(deals))
	for _, deal := range deals {
		dealById[deal.ID] = deal
	}

	type stageTotals struct {
		committed      decimal.Decimal
		deployed       decimal.Decimal
		nonRecoverable decimal.Decimal
		entryCount     int
	}
	stages := make(map[string]*stageTotals)

	for _, entry := range entries {
		response.TotalCommitted = response.TotalCommitted.Add(entry.Committed)
		response.TotalDeployed = response.TotalDeployed.Add(entry.Deployed)
		response.TotalNonRecoverable = response.TotalNonRecoverable.Add(entry.NonRecoverable)

		totals, ok := stages[entry.Stage]
		if !ok {
			totals = &stageTotals{}
			stages[entry.Stage] = totals
		}
		totals.committed = totals.committed.Add(entry.Committed)
		totals.deployed = totals.deployed.Add(entry.Deployed)
		totals.nonRecoverable = totals.nonRecoverable.Add(entry.NonRecoverable)
		totals.entryCount++

		if deal, ok := dealById[entry.DealId]; ok && deal.Status == models.PipelineStatusKilled {
			response.SunkCostKilledDeals = response.SunkCostKilledDeals.Add(entry.NonRecoverable)
		}
	}

	for stage, totals := range stages {
		rollup := CapitalStageRollup{
			Stage:          stage,
			Committed:      totals.committed,
			Deployed:       totals.deployed,
			NonRecoverable: totals.nonRecoverable,
			EntryCount:     totals.entryCount,
		}
		if totals.committed.IsPositive() {
			efficiency, _ := totals.deployed.Div(totals.committed).Mul(decimal.NewFromInt(100)).Float64()
			rollup.EfficiencyPct = round2(efficiency)
		}
		response.StageRollup = append(response.StageRollup, rollup)
	}
	sort.Slice(response.StageRollup, func(i, j int) bool {
		cmp := response.StageRollup[i].Committed.Cmp(response.StageRollup[j].Committed)
		if cmp != 0 {
			return cmp > 0
		}
		return response.StageRollup[i].Stage < response.StageRollup[j].Stage
	})

	parcelCount := 0
	acreageTotal := decimal.Zero
	for _, deal := range deals {
		if deal.Status.IsTerminal() {
			continue
		}
		parcelCount += len(deal.Parcels)
		acreageTotal = acreageTotal.Add(deal.Acreage())
	}
	if parcelCount > 0 {
		response.CostPerActiveParcel = response.TotalDeployed.
			Div(decimal.NewFromInt(int64(parcelCount))).Round(2)
	}
	if acreageTotal.IsPositive() {
		response.CostPerAcre = response.TotalDeployed.Div(acreageTotal).Round(2)
	}
	return response
}
