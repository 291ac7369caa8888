package service

import (
	"errors"
	"io"
	"log"
	"time"

	"commish/internal/domain"
	"commish/internal/models"
	"commish/pkg/salescsv"

	"gorm.io/gorm"
)

type importSaleStore interface {
	ExistsByOrderID(orderID string) (bool, error)
	ExistsSameDay(code string, amount float64, day time.Time) (bool, error)
}

type importLinkStore interface {
	GetByCode(code string) (*models.AffiliateLink, error)
}

type importCampaignStore interface {
	GetByID(id string) (*models.Campaign, error)
}

// ImportReport summarizes one CSV run. SkippedDuplicate counts rows the
// de-duplication rules rejected; SkippedUnmatched counts rows whose code did
// not resolve to a link under the importing business.
type ImportReport struct {
	Imported         int `json:"imported"`
	SkippedDuplicate int `json:"skipped_duplicate"`
	SkippedUnmatched int `json:"skipped_unmatched"`
}

// ImportService loads storefront sales exports into the ledger. Rows carrying
// an external order id are de-duplicated on it; rows without one fall back to
// the (code, amount, same calendar day) heuristic.
type ImportService struct {
	sales     importSaleStore
	links     importLinkStore
	campaigns importCampaignStore
	ledger    *LedgerService
}

func NewImportService(sales importSaleStore, links importLinkStore, campaigns importCampaignStore, ledger *LedgerService) *ImportService {
	return &ImportService{sales: sales, links: links, campaigns: campaigns, ledger: ledger}
}

// ImportSalesCSV parses and records every importable row for the given
// business. Individual row failures are skipped and counted, never aborting
// the run; only an unreadable document fails the whole import.
func (s *ImportService) ImportSalesCSV(businessID string, r io.Reader) (*ImportReport, error) {
	rows, err := salescsv.Parse(r)
	if err != nil {
		return nil, domain.Invalid("file", err.Error())
	}

	report := &ImportReport{}
	for _, row := range rows {
		link, err := s.links.GetByCode(row.Code)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("[import] code lookup %s: %v", row.Code, err)
			}
			report.SkippedUnmatched++
			continue
		}
		campaign, err := s.campaigns.GetByID(link.CampaignID)
		if err != nil || campaign.BusinessID != businessID {
			report.SkippedUnmatched++
			continue
		}

		dup, err := s.isDuplicate(row)
		if err != nil {
			log.Printf("[import] duplicate check %s: %v", row.Code, err)
			report.SkippedUnmatched++
			continue
		}
		if dup {
			report.SkippedDuplicate++
			continue
		}

		if _, err := s.ledger.RecordSale(campaign.ID, row.Code, row.Amount, domain.VerifyCSVImport, row.OrderID); err != nil {
			log.Printf("[import] record sale %s: %v", row.Code, err)
			report.SkippedUnmatched++
			continue
		}
		report.Imported++
	}
	return report, nil
}

func (s *ImportService) isDuplicate(row salescsv.Row) (bool, error) {
	if row.OrderID != "" {
		return s.sales.ExistsByOrderID(row.OrderID)
	}
	day := row.Date
	if day.IsZero() {
		day = time.Now()
	}
	return s.sales.ExistsSameDay(row.Code, row.Amount, day)
}
