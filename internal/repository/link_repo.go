package repository

import (
	"strings"

	"commish/internal/models"

	"gorm.io/gorm"
)

type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

func (r *LinkRepository) Create(l *models.AffiliateLink) error {
	return r.db.Create(l).Error
}

func (r *LinkRepository) GetByID(id string) (*models.AffiliateLink, error) {
	var l models.AffiliateLink
	if err := r.db.Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByCampaignAndCreator returns the single link for a (campaign, creator)
// pair, if any.
func (r *LinkRepository) GetByCampaignAndCreator(campaignID, creatorID string) (*models.AffiliateLink, error) {
	var l models.AffiliateLink
	err := r.db.Where("campaign_id = ? AND creator_id = ?", campaignID, creatorID).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// GetByCode resolves a tracking code case-insensitively. Codes are stored
// uppercased.
func (r *LinkRepository) GetByCode(code string) (*models.AffiliateLink, error) {
	var l models.AffiliateLink
	err := r.db.Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CodeTakenByOther reports whether another link already uses the code.
func (r *LinkRepository) CodeTakenByOther(code, excludeLinkID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.AffiliateLink{}).
		Where("code = ? AND id <> ?", strings.ToUpper(strings.TrimSpace(code)), excludeLinkID).
		Count(&count).Error
	return count > 0, err
}

func (r *LinkRepository) Update(l *models.AffiliateLink) error {
	return r.db.Save(l).Error
}

func (r *LinkRepository) ListByCreator(creatorID string) ([]models.AffiliateLink, error) {
	var list []models.AffiliateLink
	err := r.db.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *LinkRepository) ListByBusiness(businessID string) ([]models.AffiliateLink, error) {
	var list []models.AffiliateLink
	err := r.db.
		Joins("JOIN campaigns ON campaigns.id = affiliate_links.campaign_id").
		Where("campaigns.business_id = ?", businessID).
		Order("affiliate_links.created_at DESC").
		Find(&list).Error
	return list, err
}

// IncrementClicks atomically bumps the click counter. Counters only grow.
func (r *LinkRepository) IncrementClicks(linkID string) error {
	return r.db.Model(&models.AffiliateLink{}).
		Where("id = ?", linkID).
		UpdateColumn("clicks", gorm.Expr("clicks + 1")).Error
}

// RevokeByCampaign cascades campaign retirement onto its links.
func (r *LinkRepository) RevokeByCampaign(campaignID string) error {
	return r.db.Model(&models.AffiliateLink{}).
		Where("campaign_id = ?", campaignID).
		Update("status", "REVOKED").Error
}

func (r *LinkRepository) All() ([]models.AffiliateLink, error) {
	var list []models.AffiliateLink
	err := r.db.Order("created_at ASC").Find(&list).Error
	return list, err
}

func (r *LinkRepository) CreateClickLog(cl *models.ClickLog) error {
	return r.db.Create(cl).Error
}

func (r *LinkRepository) AllClickLogs() ([]models.ClickLog, error) {
	var list []models.ClickLog
	err := r.db.Order("clicked_at ASC").Find(&list).Error
	return list, err
}
