package models

import (
	"time"

	"commish/pkg/codegen"

	"gorm.io/gorm"
)

// Campaign is a business's standing commission offer for one product.
// Rate and price are snapshotted onto each SaleRecord at creation time;
// editing them never reflows historical ledger rows.
type Campaign struct {
	ID                  string  `gorm:"primaryKey;size:36" json:"id"`
	BusinessID          string  `gorm:"size:36;not null;index" json:"business_id"`
	BusinessName        string  `gorm:"size:120;not null" json:"business_name"`
	ProductName         string  `gorm:"size:200;not null" json:"product_name"`
	ProductPrice        float64 `gorm:"not null" json:"product_price"`
	Description         string  `gorm:"type:text" json:"description"`
	TargetURL           string  `gorm:"size:512;not null" json:"target_url"`
	TotalCommissionRate float64 `gorm:"not null" json:"total_commission_rate"` // percent of price, 5-90 at authoring
	PaymentFrequency    string  `gorm:"size:20;not null" json:"payment_frequency"` // WEEKLY | BIWEEKLY | MONTHLY
	RefundPolicy        string  `gorm:"size:40" json:"refund_policy"`
	ContactPhone        string  `gorm:"size:40" json:"contact_phone"`
	ValidationMethod    string  `gorm:"type:text" json:"validation_method"`
	Status              string  `gorm:"size:20;not null;index" json:"status"` // ACTIVE | PAUSED | ENDED

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Business User `gorm:"foreignKey:BusinessID" json:"-"`
}

func (Campaign) TableName() string { return "campaigns" }

func (c *Campaign) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = codegen.NewID()
	}
	return nil
}
