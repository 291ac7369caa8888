package models

import (
	"time"

	"commish/pkg/codegen"

	"gorm.io/gorm"
)

// SaleRecord is one commissionable transaction. Rows are append-only
// financial records: no soft delete, mutation only through the ledger's
// status-transition operations. Campaign price and rate are snapshotted
// here so the row stays reproducible after campaign edits.
type SaleRecord struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	CampaignID    string `gorm:"size:36;not null;index" json:"campaign_id"`
	BusinessID    string `gorm:"size:36;not null;index" json:"business_id"`
	CreatorID     string `gorm:"size:36;not null;index" json:"creator_id"`
	AffiliateCode string `gorm:"size:40;not null;index" json:"affiliate_code"`
	// OrderID is the external idempotency key for imported rows; NULL for
	// manual entries so the unique index never collides on absent ids.
	OrderID     *string `gorm:"size:64;uniqueIndex:idx_sales_order_id" json:"order_id,omitempty"`
	ProductName string  `gorm:"size:200;not null" json:"product_name"`

	SaleAmount     float64 `gorm:"not null" json:"sale_amount"`
	CommissionRate float64 `gorm:"not null" json:"commission_rate"`

	TotalCommission float64 `gorm:"not null" json:"total_commission"`
	PlatformFee     float64 `gorm:"not null" json:"platform_fee"`
	CreatorPay      float64 `gorm:"not null" json:"creator_pay"`

	SaleDate           time.Time `gorm:"not null" json:"sale_date"`
	ExpectedPayoutDate time.Time `gorm:"not null" json:"expected_payout_date"`

	Status             string `gorm:"size:20;not null;index" json:"status"` // PENDING | DUE | PAYMENT_SENT | PAID | DISPUTED
	PlatformFeePaid    bool   `gorm:"not null;default:false;index" json:"platform_fee_paid"`
	PlatformFeeTxID    string `gorm:"size:128" json:"platform_fee_tx_id,omitempty"`
	CreatorPayTxID     string `gorm:"size:128" json:"creator_pay_tx_id,omitempty"`
	VerificationMethod string `gorm:"size:20;not null" json:"verification_method"` // MANUAL_ENTRY | CSV_IMPORT | LEDGER_SYNC

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (SaleRecord) TableName() string { return "sale_records" }

func (s *SaleRecord) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = codegen.NewID()
	}
	return nil
}
