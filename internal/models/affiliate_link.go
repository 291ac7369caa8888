package models

import (
	"time"

	"commish/pkg/codegen"

	"gorm.io/gorm"
)

// AffiliateLink binds one creator to one campaign. At most one link exists
// per (campaign, creator) pair; tracking codes are globally unique
// case-insensitively (enforced by storing the uppercased code).
type AffiliateLink struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	CampaignID  string `gorm:"size:36;not null;index:idx_links_campaign_creator,unique" json:"campaign_id"`
	CreatorID   string `gorm:"size:36;not null;index:idx_links_campaign_creator,unique" json:"creator_id"`
	CreatorName string `gorm:"size:120;not null" json:"creator_name"`
	// Code is stored uppercased; resolution is case-insensitive exact match.
	Code           string `gorm:"size:40;index" json:"code"`
	DestinationURL string `gorm:"size:512" json:"destination_url"`
	DiscountCode   string `gorm:"size:40" json:"discount_code,omitempty"`
	Status         string `gorm:"size:24;not null;index" json:"status"` // PENDING_ASSIGNMENT | ACTIVE | REVOKED
	Clicks         int64  `gorm:"not null;default:0" json:"clicks"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Campaign Campaign `gorm:"foreignKey:CampaignID" json:"-"`
	Creator  User     `gorm:"foreignKey:CreatorID" json:"-"`
}

func (AffiliateLink) TableName() string { return "affiliate_links" }

func (l *AffiliateLink) BeforeCreate(_ *gorm.DB) error {
	if l.ID == "" {
		l.ID = codegen.NewID()
	}
	return nil
}
