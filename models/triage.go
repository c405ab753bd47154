package models

import (
	"context"
	"errors"
	"time"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/utils"
)

// TriageRun is one execution of the AI deal-triage pipeline. Only the most
// recent succeeded run carries an authoritative confidence score.
type TriageRun struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"index;not null" json:"organization_id"`
	DealId         int             `gorm:"index;not null" json:"deal_id"`
	Status         TriageRunStatus `gorm:"size:20;not null" json:"status"`
	Confidence     *float64        `json:"confidence"`
	ModelName      string          `gorm:"size:100" json:"model_name"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// RiskEntry is a manually recorded risk score. Entries tagged source=triage
// stand in for a triage confidence when no successful run exists.
type RiskEntry struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrganizationId string    `gorm:"index;not null" json:"organization_id"`
	DealId         int       `gorm:"index;not null" json:"deal_id"`
	Source         string    `gorm:"index;size:30;not null" json:"source"`
	Score          float64   `json:"score"`
	Notes          string    `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type NewRiskEntry struct {
	Source string  `json:"source" binding:"required"`
	Score  float64 `json:"score"`
	Notes  string  `json:"notes"`
}

func CreateRiskEntry(ctx context.Context, dealId int, input *NewRiskEntry) (*RiskEntry, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := utils.ValidateResourceId[Deal](ctx, organizationId, dealId); err != nil {
		return nil, errors.New("deal not found")
	}
	if input.Score < 0 || input.Score > 100 {
		return nil, errors.New("score must be between 0 and 100")
	}

	entry := RiskEntry{
		OrganizationId: organizationId,
		DealId:         dealId,
		Source:         input.Source,
		Score:          input.Score,
		Notes:          input.Notes,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// LoadTriageScores resolves the single best-available risk score per deal:
// the most recent succeeded triage run's confidence wins; otherwise the
// lowest score among manual entries tagged source=triage. Deals with
// neither are absent from the map.
func LoadTriageScores(ctx context.Context) (map[int]float64, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	db := config.GetDB()

	var runs []*TriageRun
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND status = ?", organizationId, TriageRunStatusSucceeded).
		Order("created_at DESC").
		Find(&runs).Error; err != nil {
		return nil, err
	}

	scores := make(map[int]float64)
	for _, run := range runs {
		if run.Confidence == nil {
			continue
		}
		if _, seen := scores[run.DealId]; seen {
			// runs are newest-first; the first confidence per deal wins
			continue
		}
		scores[run.DealId] = *run.Confidence
	}

	var entries []*RiskEntry
	if err := db.WithContext(ctx).
		Where("organization_id = ? AND source = ?", organizationId, RiskEntrySourceTriage).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	manual := make(map[int]float64)
	for _, entry := range entries {
		if existing, seen := manual[entry.DealId]; !seen || entry.Score < existing {
			// lower score wins among duplicate manual entries
			manual[entry.DealId] = entry.Score
		}
	}
	for dealId, score := range manual {
		if _, fromRun := scores[dealId]; !fromRun {
			scores[dealId] = score
		}
	}

	return scores, nil
}
