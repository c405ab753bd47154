package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/finance"
	"github.com/gallagherpc/deals_backend/utils"
	"github.com/shopspring/decimal"
)

type Deal struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OrganizationId string          `gorm:"index;not null" json:"organization_id"`
	Name           string          `gorm:"index;size:200;not null" json:"name" binding:"required"`
	Sku            DealSku         `gorm:"size:30;not null" json:"sku"`
	Status         PipelineStatus  `gorm:"index;size:20;not null;default:INTAKE" json:"status"`
	JurisdictionId int             `gorm:"index" json:"jurisdiction_id"`
	ClosingDate    *time.Time      `json:"closing_date"`
	PurchasePrice  decimal.Decimal `gorm:"type:decimal(20,2)" json:"purchase_price"`
	EquityRequired decimal.Decimal `gorm:"type:decimal(20,2)" json:"equity_required"`
	// Stored pro-forma assumptions; when absent the snapshot loader
	// synthesizes defaults from aggregate acreage.
	AssumptionsJson []byte    `gorm:"type:json" json:"assumptions_json,omitempty"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Parcels        []Parcel      `gorm:"foreignKey:DealId" json:"parcels,omitempty"`
	FinancingTerms []Financing   `gorm:"foreignKey:DealId" json:"financing_terms,omitempty"`
	Jurisdiction   *Jurisdiction `gorm:"foreignKey:JurisdictionId" json:"jurisdiction,omitempty"`
}

type NewDeal struct {
	Name           string          `json:"name" binding:"required"`
	Sku            string          `json:"sku" binding:"required"`
	JurisdictionId int             `json:"jurisdiction_id"`
	ClosingDate    *time.Time      `json:"closing_date"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	EquityRequired decimal.Decimal `json:"equity_required"`
}

type DealTermsUpdate struct {
	ClosingDate    *time.Time                   `json:"closing_date"`
	PurchasePrice  *decimal.Decimal             `json:"purchase_price"`
	EquityRequired *decimal.Decimal             `json:"equity_required"`
	Assumptions    *finance.ProFormaAssumptions `json:"assumptions"`
}

func (input *NewDeal) validate(ctx context.Context, organizationId string) error {
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if _, err := ParseDealSku(input.Sku); err != nil {
		return err
	}
	if input.JurisdictionId > 0 {
		if err := utils.ValidateResourceId[Jurisdiction](ctx, organizationId, input.JurisdictionId); err != nil {
			return errors.New("jurisdiction not found")
		}
	}
	return nil
}

func CreateDeal(ctx context.Context, input *NewDeal) (*Deal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	if err := input.validate(ctx, organizationId); err != nil {
		return nil, err
	}

	deal := Deal{
		OrganizationId: organizationId,
		Name:           input.Name,
		Sku:            DealSku(input.Sku),
		Status:         PipelineStatusIntake,
		JurisdictionId: input.JurisdictionId,
		ClosingDate:    input.ClosingDate,
		PurchasePrice:  input.PurchasePrice,
		EquityRequired: input.EquityRequired,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&deal).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func GetDeal(ctx context.Context, id int) (*Deal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	var deal Deal
	db := config.GetDB()
	err := db.WithContext(ctx).
		Preload("Parcels").
		Preload("FinancingTerms").
		Preload("Jurisdiction").
		Where("organization_id = ? AND id = ?", organizationId, id).
		First(&deal).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &deal, nil
}

// ListDeals returns every deal of the organization with parcels, financing
// terms and jurisdiction loaded. Analytics filters by status in memory;
// deals are never physically deleted.
func ListDeals(ctx context.Context) ([]*Deal, error) {
	organizationId, ok := utils.GetOrganizationIdFromContext(ctx)
	if !ok || organizationId == "" {
		return nil, errors.New("organization id is required")
	}

	var deals []*Deal
	db := config.GetDB()
	err := db.WithContext(ctx).
		Preload("Parcels").
		Preload("FinancingTerms").
		Preload("Jurisdiction").
		Where("organization_id = ?", organizationId).
		Order("created_at ASC").
		Find(&deals).Error
	if err != nil {
		return nil, err
	}
	return deals, nil
}

func UpdateDealTerms(ctx context.Context, id int, input *DealTermsUpdate) (*Deal, error) {
	deal, err := GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.ClosingDate != nil {
		deal.ClosingDate = input.ClosingDate
	}
	if input.PurchasePrice != nil {
		deal.PurchasePrice = *input.PurchasePrice
	}
	if input.EquityRequired != nil {
		deal.EquityRequired = *input.EquityRequired
	}
	if input.Assumptions != nil {
		raw, merr := json.Marshal(input.Assumptions)
		if merr != nil {
			return nil, merr
		}
		deal.AssumptionsJson = raw
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Save(deal).Error; err != nil {
		return nil, err
	}
	return deal, nil
}

// Acreage sums parcel acreage, treating null acreage as zero.
func (d *Deal) Acreage() decimal.Decimal {
	total := decimal.Zero
	for _, parcel := range d.Parcels {
		if parcel.Acreage != nil {
			total = total.Add(*parcel.Acreage)
		}
	}
	return total
}

// StoredAssumptions parses the persisted pro-forma assumptions, nil when the
// deal carries none (or carries garbage, which is treated as none).
func (d *Deal) StoredAssumptions() *finance.ProFormaAssumptions {
	if len(d.AssumptionsJson) == 0 {
		return nil
	}
	var assumptions finance.ProFormaAssumptions
	if err := json.Unmarshal(d.AssumptionsJson, &assumptions); err != nil {
		return nil
	}
	return &assumptions
}

func (d *Deal) JurisdictionName() string {
	if d.Jurisdiction == nil || d.Jurisdiction.Name == "" {
		return "Unknown"
	}
	return d.Jurisdiction.Name
}
