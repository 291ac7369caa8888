package repository

import (
	"strings"
	"time"

	"commish/internal/models"

	"gorm.io/gorm"
)

type SaleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) Create(s *models.SaleRecord) error {
	return r.db.Create(s).Error
}

func (r *SaleRepository) GetByID(id string) (*models.SaleRecord, error) {
	var s models.SaleRecord
	if err := r.db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SaleRepository) Update(s *models.SaleRecord) error {
	return r.db.Save(s).Error
}

func (r *SaleRepository) ListByBusiness(businessID string) ([]models.SaleRecord, error) {
	var list []models.SaleRecord
	err := r.db.Where("business_id = ?", businessID).Order("sale_date DESC").Find(&list).Error
	return list, err
}

func (r *SaleRepository) ListByCreator(creatorID string) ([]models.SaleRecord, error) {
	var list []models.SaleRecord
	err := r.db.Where("creator_id = ?", creatorID).Order("sale_date DESC").Find(&list).Error
	return list, err
}

func (r *SaleRepository) ListByStatus(statuses ...string) ([]models.SaleRecord, error) {
	var list []models.SaleRecord
	err := r.db.Where("status IN ?", statuses).Order("sale_date ASC").Find(&list).Error
	return list, err
}

// ExistsByOrderID checks the external idempotency key of imported rows.
func (r *SaleRepository) ExistsByOrderID(orderID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.SaleRecord{}).Where("order_id = ?", orderID).Count(&count).Error
	return count > 0, err
}

// ExistsSameDay implements the import duplicate heuristic: same code, same
// amount, same calendar day. An approximation, not a true idempotency key.
func (r *SaleRepository) ExistsSameDay(code string, amount float64, day time.Time) (bool, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)
	var count int64
	err := r.db.Model(&models.SaleRecord{}).
		Where("affiliate_code = ? AND sale_amount = ? AND sale_date >= ? AND sale_date < ?",
			strings.ToUpper(strings.TrimSpace(code)), amount, start, end).
		Count(&count).Error
	return count > 0, err
}

// ListOverduePending returns PENDING rows whose expected payout date has
// passed; the sweep promotes them to DUE.
func (r *SaleRepository) ListOverduePending(now time.Time) ([]models.SaleRecord, error) {
	var list []models.SaleRecord
	err := r.db.Where("status = ? AND expected_payout_date < ?", "PENDING", now).Find(&list).Error
	return list, err
}

func (r *SaleRepository) ListUnpaidPlatformFees() ([]models.SaleRecord, error) {
	var list []models.SaleRecord
	err := r.db.Where("platform_fee_paid = ?", false).Find(&list).Error
	return list, err
}

func (r *SaleRepository) All() ([]models.SaleRecord, error) {
	var list []models.SaleRecord
	err := r.db.Order("sale_date ASC").Find(&list).Error
	return list, err
}
