package repository

import (
	"commish/internal/models"

	"gorm.io/gorm"
)

type CampaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

func (r *CampaignRepository) Create(c *models.Campaign) error {
	return r.db.Create(c).Error
}

func (r *CampaignRepository) GetByID(id string) (*models.Campaign, error) {
	var c models.Campaign
	if err := r.db.Where("id = ?", id).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListActive() ([]models.Campaign, error) {
	var list []models.Campaign
	err := r.db.Where("status = ?", "ACTIVE").Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *CampaignRepository) ListByBusiness(businessID string) ([]models.Campaign, error) {
	var list []models.Campaign
	err := r.db.Where("business_id = ?", businessID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *CampaignRepository) Update(c *models.Campaign) error {
	return r.db.Save(c).Error
}

// CountSales reports how many ledger rows reference the campaign. Rate and
// price become immutable once this is non-zero.
func (r *CampaignRepository) CountSales(campaignID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.SaleRecord{}).Where("campaign_id = ?", campaignID).Count(&count).Error
	return count, err
}

func (r *CampaignRepository) All() ([]models.Campaign, error) {
	var list []models.Campaign
	err := r.db.Order("created_at ASC").Find(&list).Error
	return list, err
}
