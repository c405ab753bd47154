package models

import (
	"context"
	"errors"
	"time"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/utils"
)

type Jurisdiction struct {
	ID             int       `gorm:"primary_key" json:"id"`
	OrganizationId string    `gorm:"index;not null" json:"organization_id"`
	Name           string    `gorm:"index;size:100;not null" json:"name" binding:"required"`
	State          string    `gorm:"size:50" json:"state"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewJurisdiction struct {
	Name  string `json:"name" binding:"required"`
	State string `json:"state"`
}

func CreateJurisdiction(ctx context.Context, input *NewJurisdiction) (*Jurisdiction, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}

	jurisdiction := Jurisdiction{
		OrganizationId: organizationId,
		Name:           input.Name,
		State:          input.State,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&jurisdiction).Error; err != nil {
		return nil, err
	}
	return &jurisdiction, nil
}

func GetJurisdiction(ctx context.Context, id int) (*Jurisdiction, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	var jurisdiction Jurisdiction
	db := config.GetDB()
	err := db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", organizationId, id).
		First(&jurisdiction).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &jurisdiction, nil
}
