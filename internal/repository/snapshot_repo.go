package repository

import (
	"commish/internal/models"

	"gorm.io/gorm"
)

// SnapshotRepository reads and replaces the full data set as one unit. Used
// by the export/import surface and the vault sink.
type SnapshotRepository struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Export reads every table in one snapshot. Not transactional; the export is
// advisory and a torn read across tables is acceptable.
func (r *SnapshotRepository) Export() (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	var users []models.User
	if err := r.db.Find(&users).Error; err != nil {
		return nil, err
	}
	snap.Users = make([]models.SnapshotUser, 0, len(users))
	for _, u := range users {
		snap.Users = append(snap.Users, models.NewSnapshotUser(u))
	}
	if err := r.db.Find(&snap.Campaigns).Error; err != nil {
		return nil, err
	}
	if err := r.db.Find(&snap.Links).Error; err != nil {
		return nil, err
	}
	if err := r.db.Order("sale_date ASC").Find(&snap.Sales).Error; err != nil {
		return nil, err
	}
	if err := r.db.Find(&snap.ClickLogs).Error; err != nil {
		return nil, err
	}
	if err := r.db.Find(&snap.Settings).Error; err != nil {
		return nil, err
	}
	return snap, nil
}

// Replace swaps the entire data set for the snapshot's contents inside one
// transaction. Last writer wins; the caller decides whether the incoming
// snapshot is fresh enough to apply.
func (r *SnapshotRepository) Replace(snap *models.Snapshot) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"click_logs", "sale_records", "affiliate_links", "campaigns", "users", "system_settings"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		if len(snap.Users) > 0 {
			users := make([]models.User, 0, len(snap.Users))
			for _, su := range snap.Users {
				users = append(users, su.Account())
			}
			if err := tx.Create(&users).Error; err != nil {
				return err
			}
		}
		if len(snap.Campaigns) > 0 {
			if err := tx.Create(&snap.Campaigns).Error; err != nil {
				return err
			}
		}
		if len(snap.Links) > 0 {
			if err := tx.Create(&snap.Links).Error; err != nil {
				return err
			}
		}
		if len(snap.Sales) > 0 {
			if err := tx.Create(&snap.Sales).Error; err != nil {
				return err
			}
		}
		if len(snap.ClickLogs) > 0 {
			if err := tx.Create(&snap.ClickLogs).Error; err != nil {
				return err
			}
		}
		if len(snap.Settings) > 0 {
			if err := tx.Create(&snap.Settings).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
