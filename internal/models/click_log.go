package models

import (
	"time"

	"commish/pkg/codegen"

	"gorm.io/gorm"
)

// ClickLog records one resolved redirect.
type ClickLog struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	LinkID       string    `gorm:"size:36;not null;index" json:"link_id"`
	CreatorID    string    `gorm:"size:36;not null;index" json:"creator_id"`
	MerchantName string    `gorm:"size:120" json:"merchant_name"`
	ClickedAt    time.Time `gorm:"not null;index" json:"clicked_at"`
	RemoteAddr   string    `gorm:"size:64" json:"remote_addr"`

	CreatedAt time.Time `json:"created_at"`
}

func (ClickLog) TableName() string { return "click_logs" }

func (c *ClickLog) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = codegen.NewID()
	}
	return nil
}
