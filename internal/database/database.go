package database

import (
	"log"
	"strconv"

	"commish/config"
	"commish/internal/domain"
	"commish/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

// AutoMigrate runs Gorm auto-migration for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Campaign{},
		&models.AffiliateLink{},
		&models.SaleRecord{},
		&models.ClickLog{},
		&models.SystemSetting{},
		&models.AuditLog{},
	)
}

// SeedAdmin ensures the platform admin account exists.
func SeedAdmin(db *gorm.DB) {
	var count int64
	db.Model(&models.User{}).Where("role = ?", domain.RoleAdmin).Count(&count)
	if count > 0 {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte("change-me-admin"), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("[seed] bcrypt: %v", err)
		return
	}
	admin := models.User{
		Name:         "System Admin",
		Email:        "admin@commish.local",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		log.Printf("[seed] admin user: %v", err)
		return
	}
	log.Printf("[seed] created admin account %s", admin.Email)
}

// SeedSettings inserts default treasury settings if missing.
func SeedSettings(db *gorm.DB, platformSplitPercent int) {
	defaults := map[string]string{
		domain.SettingAdminPayoutMethod:     "STRIPE_LINK",
		domain.SettingAdminPayoutIdentifier: "https://buy.stripe.com/admin_placeholder",
		domain.SettingAdminPayoutNetwork:    "",
		domain.SettingPlatformSplitPercent:  strconv.Itoa(platformSplitPercent),
	}
	for k, v := range defaults {
		var count int64
		db.Model(&models.SystemSetting{}).Where("`key` = ?", k).Count(&count)
		if count == 0 {
			if err := db.Create(&models.SystemSetting{Key: k, Value: v}).Error; err != nil {
				log.Printf("[seed] setting %s: %v", k, err)
			}
		}
	}
}
