package service

import (
	"fmt"
	"sort"
	"strings"

	"commish/internal/domain"
	"commish/internal/models"
	"commish/internal/money"
)

type settlementSaleStore interface {
	ListUnpaidPlatformFees() ([]models.SaleRecord, error)
	ListByStatus(statuses ...string) ([]models.SaleRecord, error)
}

type settlementUserStore interface {
	GetByID(id string) (*models.User, error)
}

// CreatorPayout aggregates what one creator is owed across open ledger
// entries. Disputed amounts stay counted as owed until resolved.
type CreatorPayout struct {
	CreatorID        string   `json:"creator_id"`
	CreatorName      string   `json:"creator_name"`
	PayoutMethod     string   `json:"payout_method"`
	PayoutIdentifier string   `json:"payout_identifier"`
	Total            float64  `json:"total"`
	SaleIDs          []string `json:"sale_ids"`
}

// BatchResult reports best-effort batch marking: missing or ineligible ids
// are skipped, never aborting the batch.
type BatchResult struct {
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
}

// SettlementService groups unpaid ledger entries by payee and pushes them
// through settlement in batches under a single payment reference.
type SettlementService struct {
	sales  settlementSaleStore
	users  settlementUserStore
	ledger *LedgerService
}

func NewSettlementService(sales settlementSaleStore, users settlementUserStore, ledger *LedgerService) *SettlementService {
	return &SettlementService{sales: sales, users: users, ledger: ledger}
}

// UnpaidPlatformFeeTotal sums the treasury share over records whose platform
// fee is still outstanding. businessID narrows to one business; empty means
// platform-wide.
func (s *SettlementService) UnpaidPlatformFeeTotal(businessID string) (float64, []string, error) {
	records, err := s.sales.ListUnpaidPlatformFees()
	if err != nil {
		return 0, nil, err
	}
	total := 0.0
	var saleIDs []string
	for _, rec := range records {
		if businessID != "" && rec.BusinessID != businessID {
			continue
		}
		total += rec.PlatformFee
		saleIDs = append(saleIDs, rec.ID)
	}
	return money.Round2(total), saleIDs, nil
}

// GroupCreatorPayouts aggregates creator pay over open entries (PENDING,
// DUE, DISPUTED), grouped by creator and sorted by name for stable output.
func (s *SettlementService) GroupCreatorPayouts(businessID string) ([]CreatorPayout, error) {
	records, err := s.sales.ListByStatus(domain.SalePending, domain.SaleDue, domain.SaleDisputed)
	if err != nil {
		return nil, err
	}
	byCreator := make(map[string]*CreatorPayout)
	for _, rec := range records {
		if businessID != "" && rec.BusinessID != businessID {
			continue
		}
		p, ok := byCreator[rec.CreatorID]
		if !ok {
			p = &CreatorPayout{CreatorID: rec.CreatorID}
			if creator, err := s.users.GetByID(rec.CreatorID); err == nil {
				p.CreatorName = creator.Name
				p.PayoutMethod = creator.PayoutMethod
				p.PayoutIdentifier = creator.PayoutIdentifier
			}
			byCreator[rec.CreatorID] = p
		}
		p.Total = money.Round2(p.Total + rec.CreatorPay)
		p.SaleIDs = append(p.SaleIDs, rec.ID)
	}
	payouts := make([]CreatorPayout, 0, len(byCreator))
	for _, p := range byCreator {
		payouts = append(payouts, *p)
	}
	sort.Slice(payouts, func(i, j int) bool { return payouts[i].CreatorName < payouts[j].CreatorName })
	return payouts, nil
}

// MarkBatchPlatformFeePaid settles the treasury share of every listed sale
// under one receipt reference. Missing ids are skipped and counted.
func (s *SettlementService) MarkBatchPlatformFeePaid(saleIDs []string, txRef string) BatchResult {
	var result BatchResult
	for _, id := range saleIDs {
		if err := s.ledger.MarkPlatformFeePaid(id, txRef); err != nil {
			result.Skipped++
			continue
		}
		result.Processed++
	}
	return result
}

// MarkBatchCreatorPaid transitions every listed sale to PAYMENT_SENT under
// one mass-pay reference. Missing or ineligible ids are skipped and counted.
func (s *SettlementService) MarkBatchCreatorPaid(saleIDs []string, txRef string) BatchResult {
	var result BatchResult
	for _, id := range saleIDs {
		if _, err := s.ledger.TransitionStatus(id, domain.SalePaymentSent, txRef); err != nil {
			result.Skipped++
			continue
		}
		result.Processed++
	}
	return result
}

// MassPayCSV renders the payout list in the mass-pay upload shape:
// Recipient Email,Amount,Currency,Note,Reference ID.
func MassPayCSV(payouts []CreatorPayout) string {
	var b strings.Builder
	b.WriteString("Recipient Email,Amount,Currency,Note,Reference ID\n")
	for _, p := range payouts {
		identifier := p.PayoutIdentifier
		if identifier == "" {
			identifier = "MISSING_INFO"
		}
		fmt.Fprintf(&b, "%s,%.2f,USD,Commission Payout,%d_SALES\n", identifier, p.Total, len(p.SaleIDs))
	}
	return b.String()
}
