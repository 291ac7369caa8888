package models

import (
	"time"

	"commish/internal/domain"
	"commish/pkg/codegen"

	"gorm.io/gorm"
)

type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Name         string         `gorm:"size:120;not null" json:"name"`
	Email        string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string         `gorm:"size:255" json:"-"`
	Role         string         `gorm:"size:20;not null;index" json:"role"` // BUSINESS | CREATOR | ADMIN
	CompanyName  string         `gorm:"size:120" json:"company_name,omitempty"`
	// Creator payout routing; empty for businesses and admins.
	PayoutMethod     string `gorm:"size:40" json:"payout_method,omitempty"`
	PayoutIdentifier string `gorm:"size:255" json:"payout_identifier,omitempty"`
	PayoutNetwork    string `gorm:"size:40" json:"payout_network,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = codegen.NewID()
	}
	return nil
}

func (u *User) IsBusiness() bool { return u.Role == domain.RoleBusiness }
func (u *User) IsCreator() bool  { return u.Role == domain.RoleCreator }
func (u *User) IsAdmin() bool    { return u.Role == domain.RoleAdmin }
