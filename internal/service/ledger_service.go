package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"commish/internal/domain"
	"commish/internal/models"
	"commish/internal/money"

	"gorm.io/gorm"
)

type ledgerSaleStore interface {
	Create(s *models.SaleRecord) error
	GetByID(id string) (*models.SaleRecord, error)
	Update(s *models.SaleRecord) error
	ListOverduePending(now time.Time) ([]models.SaleRecord, error)
}

type ledgerLinkStore interface {
	GetByCode(code string) (*models.AffiliateLink, error)
}

type ledgerCampaignStore interface {
	GetByID(id string) (*models.Campaign, error)
}

type splitSource interface {
	GetInt(key string, fallback int) int
}

type auditSink interface {
	Create(entry *models.AuditLog) error
}

// allowedTransitions is the sale settlement state machine. DISPUTED exits
// only through the admin force-resolution path; PAID is terminal.
var allowedTransitions = map[string][]string{
	domain.SalePending:     {domain.SaleDue, domain.SalePaymentSent, domain.SaleDisputed},
	domain.SaleDue:         {domain.SalePaymentSent, domain.SaleDisputed},
	domain.SalePaymentSent: {domain.SalePaid, domain.SaleDisputed},
	domain.SaleDisputed:    {},
	domain.SalePaid:        {},
}

// ValidateTransition checks a sale status change against the allowed table.
func ValidateTransition(from, to string) error {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return nil
		}
	}
	return domain.ErrInvalidTransition
}

// LedgerService owns the sale record lifecycle: creation with commission
// split, status transitions, dispute resolution and the overdue sweep.
type LedgerService struct {
	sales               ledgerSaleStore
	links               ledgerLinkStore
	campaigns           ledgerCampaignStore
	settings            splitSource
	audit               auditSink
	defaultSplitPercent int
}

func NewLedgerService(sales ledgerSaleStore, links ledgerLinkStore, campaigns ledgerCampaignStore, settings splitSource, audit auditSink, defaultSplitPercent int) *LedgerService {
	return &LedgerService{
		sales:               sales,
		links:               links,
		campaigns:           campaigns,
		settings:            settings,
		audit:               audit,
		defaultSplitPercent: defaultSplitPercent,
	}
}

func (s *LedgerService) platformSplitPercent() float64 {
	return float64(s.settings.GetInt(domain.SettingPlatformSplitPercent, s.defaultSplitPercent))
}

// RecordSale opens a PENDING ledger entry for a sale attributed to a
// tracking code. The code must resolve to a link belonging to the supplied
// campaign; anything else fails closed without touching state. The campaign
// rate and price are snapshotted onto the row. The ledger itself does not
// reject duplicates; import-side de-duplication happens before this call.
func (s *LedgerService) RecordSale(campaignID, code string, amount float64, verificationMethod, orderID string) (*models.SaleRecord, error) {
	campaign, err := s.campaigns.GetByID(campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	link, err := s.links.GetByCode(code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if link.CampaignID != campaign.ID {
		return nil, domain.ErrNotFound
	}

	if amount <= 0 {
		amount = campaign.ProductPrice
	}
	if amount < 0 {
		amount = 0
	}
	amount = money.Round2(amount)

	totalCommission := money.PercentOf(amount, campaign.TotalCommissionRate)
	platformFee, creatorPay := money.SplitCommission(totalCommission, s.platformSplitPercent())

	now := time.Now()
	cycleDays, ok := domain.PayoutCycleDays[campaign.PaymentFrequency]
	if !ok {
		cycleDays = 30
	}

	// Manual entries carry no external order id; NULL keeps them out of
	// the unique index.
	var orderRef *string
	if trimmed := strings.TrimSpace(orderID); trimmed != "" {
		orderRef = &trimmed
	}

	sale := &models.SaleRecord{
		CampaignID:         campaign.ID,
		BusinessID:         campaign.BusinessID,
		CreatorID:          link.CreatorID,
		AffiliateCode:      link.Code,
		OrderID:            orderRef,
		ProductName:        campaign.ProductName,
		SaleAmount:         amount,
		CommissionRate:     campaign.TotalCommissionRate,
		TotalCommission:    totalCommission,
		PlatformFee:        platformFee,
		CreatorPay:         creatorPay,
		SaleDate:           now,
		ExpectedPayoutDate: now.AddDate(0, 0, cycleDays),
		Status:             domain.SalePending,
		VerificationMethod: verificationMethod,
	}
	if err := s.sales.Create(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// TransitionStatus moves a sale through the settlement state machine,
// rejecting anything outside the allowed table. txRef lands on the creator
// pay reference when entering PAYMENT_SENT or PAID.
func (s *LedgerService) TransitionStatus(saleID, newStatus, txRef string) (*models.SaleRecord, error) {
	sale, err := s.sales.GetByID(saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	if err := ValidateTransition(sale.Status, newStatus); err != nil {
		return nil, err
	}
	sale.Status = newStatus
	if txRef != "" && (newStatus == domain.SalePaymentSent || newStatus == domain.SalePaid) {
		sale.CreatorPayTxID = txRef
	}
	if err := s.sales.Update(sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// MarkPlatformFeePaid flags the treasury share settled. Status is untouched.
func (s *LedgerService) MarkPlatformFeePaid(saleID, txRef string) error {
	sale, err := s.sales.GetByID(saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		return err
	}
	sale.PlatformFeePaid = true
	if txRef != "" {
		sale.PlatformFeeTxID = txRef
	}
	return s.sales.Update(sale)
}

// AdminForceResolve bypasses the transition guards. The one path that may
// pull a sale out of DISPUTED, or PAID back to PENDING. Always audited.
func (s *LedgerService) AdminForceResolve(saleID, resolution, actorID, ip string) (*models.SaleRecord, error) {
	if resolution != domain.SalePaid && resolution != domain.SalePending {
		return nil, domain.Invalid("resolution", "must be PAID or PENDING")
	}
	sale, err := s.sales.GetByID(saleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	previous := sale.Status
	sale.Status = resolution
	if err := s.sales.Update(sale); err != nil {
		return nil, err
	}
	if s.audit != nil {
		_ = s.audit.Create(&models.AuditLog{
			ActorID:    actorID,
			Action:     "sale.force_resolve",
			Resource:   "sale_record",
			ResourceID: sale.ID,
			IP:         ip,
			Metadata:   fmt.Sprintf(`{"from":%q,"to":%q}`, previous, resolution),
		})
	}
	return sale, nil
}

// SweepOverdue promotes PENDING sales past their expected payout date to
// DUE. Returns the number promoted.
func (s *LedgerService) SweepOverdue(now time.Time) (int, error) {
	overdue, err := s.sales.ListOverduePending(now)
	if err != nil {
		return 0, err
	}
	promoted := 0
	for i := range overdue {
		overdue[i].Status = domain.SaleDue
		if err := s.sales.Update(&overdue[i]); err != nil {
			log.Printf("[ledger] sweep update %s: %v", overdue[i].ID, err)
			continue
		}
		promoted++
	}
	return promoted, nil
}

// StartSweep runs SweepOverdue on a fixed interval until stop is closed.
func (s *LedgerService) StartSweep(interval time.Duration, stop <-chan struct{}) {
	go func() {
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-tick.C:
				if n, err := s.SweepOverdue(time.Now()); err != nil {
					log.Printf("[ledger] overdue sweep: %v", err)
				} else if n > 0 {
					log.Printf("[ledger] promoted %d sales to DUE", n)
				}
			case <-stop:
				return
			}
		}
	}()
}
