package service

import (
	"errors"
	"strings"

	"commish/internal/domain"
	"commish/internal/models"

	"gorm.io/gorm"
)

type campaignStore interface {
	Create(c *models.Campaign) error
	GetByID(id string) (*models.Campaign, error)
	ListActive() ([]models.Campaign, error)
	ListByBusiness(businessID string) ([]models.Campaign, error)
	Update(c *models.Campaign) error
	CountSales(campaignID string) (int64, error)
}

// CampaignInput is the authoring payload shared by create and update.
type CampaignInput struct {
	ProductName         string  `json:"product_name" binding:"required"`
	ProductPrice        float64 `json:"product_price" binding:"required"`
	Description         string  `json:"description"`
	TargetURL           string  `json:"target_url" binding:"required"`
	TotalCommissionRate float64 `json:"total_commission_rate" binding:"required"`
	PaymentFrequency    string  `json:"payment_frequency" binding:"required"`
	RefundPolicy        string  `json:"refund_policy"`
	ContactPhone        string  `json:"contact_phone"`
	ValidationMethod    string  `json:"validation_method"`
}

// CampaignService owns campaign authoring and lifecycle. Rate and price lock
// once the campaign has recorded sales; ending a campaign revokes its links.
type CampaignService struct {
	campaigns campaignStore
	registry  *RegistryService
}

func NewCampaignService(campaigns campaignStore, registry *RegistryService) *CampaignService {
	return &CampaignService{campaigns: campaigns, registry: registry}
}

func validateCampaignInput(in *CampaignInput) error {
	if strings.TrimSpace(in.ProductName) == "" {
		return domain.Invalid("product_name", "product name is required")
	}
	if in.ProductPrice <= 0 {
		return domain.Invalid("product_price", "price must be positive")
	}
	if in.TotalCommissionRate < 5 || in.TotalCommissionRate > 90 {
		return domain.Invalid("total_commission_rate", "rate must be between 5 and 90 percent")
	}
	if _, ok := domain.PayoutCycleDays[in.PaymentFrequency]; !ok {
		return domain.Invalid("payment_frequency", "must be WEEKLY, BIWEEKLY or MONTHLY")
	}
	if strings.TrimSpace(in.TargetURL) == "" {
		return domain.Invalid("target_url", "target URL is required")
	}
	return nil
}

func (s *CampaignService) Create(business *models.User, in *CampaignInput) (*models.Campaign, error) {
	if err := validateCampaignInput(in); err != nil {
		return nil, err
	}
	businessName := business.CompanyName
	if businessName == "" {
		businessName = business.Name
	}
	campaign := &models.Campaign{
		BusinessID:          business.ID,
		BusinessName:        businessName,
		ProductName:         strings.TrimSpace(in.ProductName),
		ProductPrice:        in.ProductPrice,
		Description:         in.Description,
		TargetURL:           EnsureURLScheme(in.TargetURL),
		TotalCommissionRate: in.TotalCommissionRate,
		PaymentFrequency:    in.PaymentFrequency,
		RefundPolicy:        in.RefundPolicy,
		ContactPhone:        in.ContactPhone,
		ValidationMethod:    in.ValidationMethod,
		Status:              domain.CampaignActive,
	}
	if err := s.campaigns.Create(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// Update edits campaign details. Once the campaign has recorded sales the
// financial terms are locked: rate and price edits are refused rather than
// silently ignored, because ledger rows snapshot them at sale time and a
// quiet edit would make new and old rows look inconsistent.
func (s *CampaignService) Update(campaignID, businessID string, in *CampaignInput) (*models.Campaign, error) {
	campaign, err := s.getOwned(campaignID, businessID)
	if err != nil {
		return nil, err
	}
	if err := validateCampaignInput(in); err != nil {
		return nil, err
	}
	count, err := s.campaigns.CountSales(campaignID)
	if err != nil {
		return nil, err
	}
	if count > 0 && (in.TotalCommissionRate != campaign.TotalCommissionRate || in.ProductPrice != campaign.ProductPrice) {
		return nil, domain.Invalid("total_commission_rate", "rate and price are locked once sales exist")
	}
	campaign.ProductName = strings.TrimSpace(in.ProductName)
	campaign.ProductPrice = in.ProductPrice
	campaign.Description = in.Description
	campaign.TargetURL = EnsureURLScheme(in.TargetURL)
	campaign.TotalCommissionRate = in.TotalCommissionRate
	campaign.PaymentFrequency = in.PaymentFrequency
	campaign.RefundPolicy = in.RefundPolicy
	campaign.ContactPhone = in.ContactPhone
	campaign.ValidationMethod = in.ValidationMethod
	if err := s.campaigns.Update(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

// SetStatus moves the campaign between ACTIVE, PAUSED and ENDED. Ending is
// one-way and cascades a revoke onto every link under the campaign.
func (s *CampaignService) SetStatus(campaignID, businessID, status string) (*models.Campaign, error) {
	if status != domain.CampaignActive && status != domain.CampaignPaused && status != domain.CampaignEnded {
		return nil, domain.Invalid("status", "must be ACTIVE, PAUSED or ENDED")
	}
	campaign, err := s.getOwned(campaignID, businessID)
	if err != nil {
		return nil, err
	}
	if campaign.Status == domain.CampaignEnded {
		return nil, domain.Invalid("status", "campaign has ended")
	}
	campaign.Status = status
	if err := s.campaigns.Update(campaign); err != nil {
		return nil, err
	}
	if status == domain.CampaignEnded {
		if err := s.registry.RevokeCampaignLinks(campaign.ID); err != nil {
			return nil, err
		}
	}
	return campaign, nil
}

func (s *CampaignService) GetByID(id string) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return campaign, nil
}

// ListOpen returns campaigns creators can browse and request links for.
func (s *CampaignService) ListOpen() ([]models.Campaign, error) {
	return s.campaigns.ListActive()
}

func (s *CampaignService) ListByBusiness(businessID string) ([]models.Campaign, error) {
	return s.campaigns.ListByBusiness(businessID)
}

func (s *CampaignService) getOwned(campaignID, businessID string) (*models.Campaign, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if campaign.BusinessID != businessID {
		return nil, domain.ErrNotFound
	}
	return campaign, nil
}
