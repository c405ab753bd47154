package models

import (
	"context"
	"errors"
	"time"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/utils"
	"github.com/shopspring/decimal"
)

type Parcel struct {
	ID             int              `gorm:"primary_key" json:"id"`
	OrganizationId string           `gorm:"index;not null" json:"organization_id"`
	DealId         int              `gorm:"index;not null" json:"deal_id"`
	ParcelNumber   string           `gorm:"size:50" json:"parcel_number"`
	Acreage        *decimal.Decimal `gorm:"type:decimal(12,4)" json:"acreage"`
	Zoning         string           `gorm:"size:50" json:"zoning"`
	FloodZone      string           `gorm:"size:10" json:"flood_zone"`
	CreatedAt      time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewParcel struct {
	ParcelNumber string           `json:"parcel_number"`
	Acreage      *decimal.Decimal `json:"acreage"`
	Zoning       string           `json:"zoning"`
	FloodZone    string           `json:"flood_zone"`
}

func CreateParcel(ctx context.Context, dealId int, input *NewParcel) (*Parcel, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := utils.ValidateResourceId[Deal](ctx, organizationId, dealId); err != nil {
		return nil, errors.New("deal not found")
	}
	if input.Acreage != nil && input.Acreage.IsNegative() {
		return nil, errors.New("acreage cannot be negative")
	}

	parcel := Parcel{
		OrganizationId: organizationId,
		DealId:         dealId,
		ParcelNumber:   input.ParcelNumber,
		Acreage:        input.Acreage,
		Zoning:         input.Zoning,
		FloodZone:      input.FloodZone,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&parcel).Error; err != nil {
		return nil, err
	}
	return &parcel, nil
}
