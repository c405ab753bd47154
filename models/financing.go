package models

import (
	"context"
	"errors"
	"time"

	"github.com/gallagherpc/deals_backend/config"
	"github.com/gallagherpc/deals_backend/utils"
	"github.com/shopspring/decimal"
)

type Financing struct {
	ID              int              `gorm:"primary_key" json:"id"`
	OrganizationId  string           `gorm:"index;not null" json:"organization_id"`
	DealId          int              `gorm:"index;not null" json:"deal_id"`
	LoanAmount      decimal.Decimal  `gorm:"type:decimal(20,2)" json:"loan_amount"`
	CommitmentDate  *time.Time       `json:"commitment_date"`
	FundedDate      *time.Time       `json:"funded_date"`
	LoanTermMonths  *int             `json:"loan_term_months"`
	DscrRequirement *decimal.Decimal `gorm:"type:decimal(6,3)" json:"dscr_requirement"`
	LenderName      *string          `gorm:"size:200" json:"lender_name"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFinancing struct {
	LoanAmount      decimal.Decimal  `json:"loan_amount" binding:"required"`
	CommitmentDate  *time.Time       `json:"commitment_date"`
	FundedDate      *time.Time       `json:"funded_date"`
	LoanTermMonths  *int             `json:"loan_term_months"`
	DscrRequirement *decimal.Decimal `json:"dscr_requirement"`
	LenderName      *string          `json:"lender_name"`
}

func CreateFinancing(ctx context.Context, dealId int, input *NewFinancing) (*Financing, error) {
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
	if input.LoanAmount.IsNegative() {
		return nil, errors.New("loan amount cannot be negative")
	}
	if input.LoanTermMonths != nil && *input.LoanTermMonths < 0 {
		return nil, errors.New("loan term cannot be negative")
	}

	financing := Financing{
		OrganizationId:  organizationId,
		DealId:          dealId,
		LoanAmount:      input.LoanAmount,
		CommitmentDate:  input.CommitmentDate,
		FundedDate:      input.FundedDate,
		LoanTermMonths:  input.LoanTermMonths,
		DscrRequirement: input.DscrRequirement,
		LenderName:      input.LenderName,
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&financing).Error; err != nil {
		return nil, err
	}
	return &financing, nil
}

// LenderBucket normalizes an unset lender into the sentinel bucket used by
// lender concentration.
func (f *Financing) LenderBucket() string {
	if f.LenderName == nil || *f.LenderName == "" {
		return UnspecifiedLender
	}
	return *f.LenderName
}

// StartDate resolves the maturity clock start: funded date, else commitment
// date, else the deal's closing date. Nil when none resolve.
func (f *Financing) StartDate(dealClosingDate *time.Time) *time.Time {
	if f.FundedDate != nil {
		return f.FundedDate
	}
	if f.CommitmentDate != nil {
		return f.CommitmentDate
	}
	return dealClosingDate
}

// MaturityDate is the start date plus the loan term; a missing term leaves a
// zero-duration bucket at the start date itself.
func (f *Financing) MaturityDate(dealClosingDate *time.Time) *time.Time {
	start := f.StartDate(dealClosingDate)
	if start == nil {
		return nil
	}
	if f.LoanTermMonths == nil {
		return start
	}
	maturity := start.AddDate(0, *f.LoanTermMonths, 0)
	return &maturity
}
