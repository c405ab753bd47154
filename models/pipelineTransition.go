package models

import (
	"context"
	"errors"
	"time"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/utils"
	"gorm.io/gorm"
)

// PipelineTransitionEvent is the append-only stage-transition log. A deal
// with no events has never left INTAKE.
type PipelineTransitionEvent struct {
	ID             int            `gorm:"primary_key" json:"id"`
	OrganizationId string         `gorm:"index;not null" json:"organization_id"`
	DealId         int            `gorm:"index;not null" json:"deal_id"`
	FromStage      PipelineStatus `gorm:"size:20;not null" json:"from_stage"`
	ToStage        PipelineStatus `gorm:"size:20;not null" json:"to_stage"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// TransitionDealStage moves a deal to the target stage and appends the
// transition event inside one transaction, so the velocity log can never
// disagree with the deal's current status.
func TransitionDealStage(ctx context.Context, dealId int, target PipelineStatus) (*Deal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if _, err := ParsePipelineStatus(string(target)); err != nil {
		return nil, err
	}

	var deal Deal
	db := config.GetDB()
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("organization_id = ? AND id = ?", organizationId, dealId).
			First(&deal).Error; err != nil {
			return utils.ErrorRecordNotFound
		}
		if deal.Status.IsTerminal() {
			return errors.New("deal is in a terminal stage")
		}
		if target == deal.Status {
			return errors.New("deal is already in the target stage")
		}

		event := PipelineTransitionEvent{
			OrganizationId: organizationId,
			DealId:         dealId,
			FromStage:      deal.Status,
			ToStage:        target,
		}
		if err := tx.Create(&event).Error; err != nil {
			return err
		}

		deal.Status = target
		return tx.Save(&deal).Error
	})
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

// LoadTransitionEvents returns the organization's full transition log in
// ascending timestamp order (the velocity walk depends on it).
func LoadTransitionEvents(ctx context.Context) ([]*PipelineTransitionEvent, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	var events []*PipelineTransitionEvent
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("organization_id = ?", organizationId).
		Order("created_at ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
