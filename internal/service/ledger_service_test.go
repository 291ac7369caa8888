package service

import (
	"fmt"
	"testing"
	"time"

	"commish/internal/domain"
	"commish/internal/models"

	"gorm.io/gorm"
)

type saleStoreStub struct {
	sales  map[string]*models.SaleRecord
	nextID int
}

func newSaleStoreStub() *saleStoreStub {
	return &saleStoreStub{sales: make(map[string]*models.SaleRecord)}
}

func (s *saleStoreStub) Create(rec *models.SaleRecord) error {
	if rec.ID == "" {
		s.nextID++
		rec.ID = fmt.Sprintf("sale-%d", s.nextID)
	}
	s.sales[rec.ID] = rec
	return nil
}

func (s *saleStoreStub) GetByID(id string) (*models.SaleRecord, error) {
	if rec, ok := s.sales[id]; ok {
		return rec, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *saleStoreStub) Update(rec *models.SaleRecord) error {
	if _, ok := s.sales[rec.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.sales[rec.ID] = rec
	return nil
}

func (s *saleStoreStub) ListOverduePending(now time.Time) ([]models.SaleRecord, error) {
	var out []models.SaleRecord
	for _, rec := range s.sales {
		if rec.Status == domain.SalePending && rec.ExpectedPayoutDate.Before(now) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *saleStoreStub) ListByStatus(statuses ...string) ([]models.SaleRecord, error) {
	var out []models.SaleRecord
	for _, rec := range s.sales {
		for _, st := range statuses {
			if rec.Status == st {
				out = append(out, *rec)
				break
			}
		}
	}
	return out, nil
}

func (s *saleStoreStub) ListUnpaidPlatformFees() ([]models.SaleRecord, error) {
	var out []models.SaleRecord
	for _, rec := range s.sales {
		if !rec.PlatformFeePaid {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (s *saleStoreStub) ExistsByOrderID(orderID string) (bool, error) {
	for _, rec := range s.sales {
		if rec.OrderID != nil && *rec.OrderID == orderID {
			return true, nil
		}
	}
	return false, nil
}

func (s *saleStoreStub) ExistsSameDay(code string, amount float64, day time.Time) (bool, error) {
	for _, rec := range s.sales {
		sameDay := rec.SaleDate.Year() == day.Year() && rec.SaleDate.YearDay() == day.YearDay()
		if rec.AffiliateCode == code && rec.SaleAmount == amount && sameDay {
			return true, nil
		}
	}
	return false, nil
}

type settingsStub struct {
	ints map[string]int
}

func (s *settingsStub) GetInt(key string, fallback int) int {
	if v, ok := s.ints[key]; ok {
		return v
	}
	return fallback
}

type auditStub struct {
	entries []models.AuditLog
}

func (s *auditStub) Create(entry *models.AuditLog) error {
	s.entries = append(s.entries, *entry)
	return nil
}

func newLedgerFixture(t *testing.T, splitPercent int) (*LedgerService, *saleStoreStub, *linkStoreStub, *auditStub) {
	t.Helper()
	sales := newSaleStoreStub()
	links := newLinkStoreStub()
	campaign := activeCampaign("camp-1")
	campaign.TotalCommissionRate = 25
	campaigns := newCampaignStoreStub(campaign)
	audit := &auditStub{}
	svc := NewLedgerService(sales, links, campaigns, &settingsStub{}, audit, splitPercent)

	links.Create(&models.AffiliateLink{
		CampaignID: "camp-1",
		CreatorID:  "creator-1",
		Code:       "JAS10",
		Status:     domain.LinkActive,
	})
	return svc, sales, links, audit
}

func TestRecordSaleSplit(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t, 33)

	sale, err := svc.RecordSale("camp-1", "JAS10", 199.99, domain.VerifyManualEntry, "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sale.TotalCommission != 50.00 {
		t.Errorf("total commission = %v, want 50.00", sale.TotalCommission)
	}
	if sale.PlatformFee != 16.50 {
		t.Errorf("platform fee = %v, want 16.50", sale.PlatformFee)
	}
	if sale.CreatorPay != 33.50 {
		t.Errorf("creator pay = %v, want 33.50", sale.CreatorPay)
	}
	if sale.Status != domain.SalePending {
		t.Errorf("status = %q, want PENDING", sale.Status)
	}
	if sale.CommissionRate != 25 {
		t.Errorf("snapshotted rate = %v, want 25", sale.CommissionRate)
	}
}

func TestRecordSaleDefaultsToProductPrice(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t, 33)
	sale, err := svc.RecordSale("camp-1", "JAS10", 0, domain.VerifyManualEntry, "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sale.SaleAmount != 59.99 {
		t.Errorf("amount = %v, want campaign price 59.99", sale.SaleAmount)
	}
}

// Manual entries carry no external order id. The column must stay NULL so
// the unique index never treats two of them as the same order, and repeated
// manual sales must all land in the ledger.
func TestRecordSaleManualEntriesHaveNoOrderID(t *testing.T) {
	svc, sales, _, _ := newLedgerFixture(t, 33)

	first, err := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")
	if err != nil {
		t.Fatalf("first manual sale: %v", err)
	}
	second, err := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "  ")
	if err != nil {
		t.Fatalf("second manual sale: %v", err)
	}
	if first.OrderID != nil || second.OrderID != nil {
		t.Errorf("manual entries must store a NULL order id, got %v and %v", first.OrderID, second.OrderID)
	}
	if len(sales.sales) != 2 {
		t.Errorf("ledger rows = %d, want 2", len(sales.sales))
	}
}

func TestRecordSaleKeepsImportedOrderID(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t, 33)

	sale, err := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyCSVImport, " ORD-77 ")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sale.OrderID == nil || *sale.OrderID != "ORD-77" {
		t.Errorf("order id = %v, want ORD-77", sale.OrderID)
	}
}

func TestRecordSalePayoutProjection(t *testing.T) {
	cases := []struct {
		frequency string
		days      int
	}{
		{domain.FrequencyWeekly, 7},
		{domain.FrequencyBiweekly, 14},
		{domain.FrequencyMonthly, 30},
	}
	for _, c := range cases {
		sales := newSaleStoreStub()
		links := newLinkStoreStub()
		campaign := activeCampaign("camp-1")
		campaign.PaymentFrequency = c.frequency
		svc := NewLedgerService(sales, links, newCampaignStoreStub(campaign), &settingsStub{}, nil, 33)
		links.Create(&models.AffiliateLink{CampaignID: "camp-1", CreatorID: "creator-1", Code: "JAS10", Status: domain.LinkActive})

		sale, err := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")
		if err != nil {
			t.Fatalf("%s: record: %v", c.frequency, err)
		}
		want := sale.SaleDate.AddDate(0, 0, c.days)
		if !sale.ExpectedPayoutDate.Equal(want) {
			t.Errorf("%s: payout date %v, want %v", c.frequency, sale.ExpectedPayoutDate, want)
		}
	}
}

// A code belonging to a different campaign must fail closed with no row
// written, even though the code itself exists.
func TestRecordSaleCrossCampaignCode(t *testing.T) {
	sales := newSaleStoreStub()
	links := newLinkStoreStub()
	campaigns := newCampaignStoreStub(activeCampaign("camp-1"), activeCampaign("camp-2"))
	svc := NewLedgerService(sales, links, campaigns, &settingsStub{}, nil, 33)
	links.Create(&models.AffiliateLink{CampaignID: "camp-2", CreatorID: "creator-1", Code: "OTHER", Status: domain.LinkActive})

	if _, err := svc.RecordSale("camp-1", "OTHER", 100, domain.VerifyManualEntry, ""); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(sales.sales) != 0 {
		t.Errorf("sale written despite failed attribution")
	}
}

func TestRecordSaleSplitFromSettings(t *testing.T) {
	sales := newSaleStoreStub()
	links := newLinkStoreStub()
	campaign := activeCampaign("camp-1")
	campaign.TotalCommissionRate = 25
	settings := &settingsStub{ints: map[string]int{domain.SettingPlatformSplitPercent: 50}}
	svc := NewLedgerService(sales, links, newCampaignStoreStub(campaign), settings, nil, 33)
	links.Create(&models.AffiliateLink{CampaignID: "camp-1", CreatorID: "creator-1", Code: "JAS10", Status: domain.LinkActive})

	sale, err := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if sale.PlatformFee != 12.50 || sale.CreatorPay != 12.50 {
		t.Errorf("split = (%v, %v), want (12.50, 12.50) at 50%%", sale.PlatformFee, sale.CreatorPay)
	}
}

func TestValidateTransitionTable(t *testing.T) {
	allowed := []struct{ from, to string }{
		{domain.SalePending, domain.SaleDue},
		{domain.SalePending, domain.SalePaymentSent},
		{domain.SalePending, domain.SaleDisputed},
		{domain.SaleDue, domain.SalePaymentSent},
		{domain.SaleDue, domain.SaleDisputed},
		{domain.SalePaymentSent, domain.SalePaid},
		{domain.SalePaymentSent, domain.SaleDisputed},
	}
	for _, c := range allowed {
		if err := ValidateTransition(c.from, c.to); err != nil {
			t.Errorf("%s -> %s should be allowed, got %v", c.from, c.to, err)
		}
	}
	forbidden := []struct{ from, to string }{
		{domain.SalePending, domain.SalePaid},
		{domain.SaleDue, domain.SalePending},
		{domain.SaleDue, domain.SalePaid},
		{domain.SalePaid, domain.SalePending},
		{domain.SalePaid, domain.SaleDisputed},
		{domain.SaleDisputed, domain.SalePaid},
		{domain.SaleDisputed, domain.SalePending},
		{domain.SaleDisputed, domain.SaleDue},
	}
	for _, c := range forbidden {
		if err := ValidateTransition(c.from, c.to); err != domain.ErrInvalidTransition {
			t.Errorf("%s -> %s should be rejected, got %v", c.from, c.to, err)
		}
	}
}

func TestTransitionStatusRecordsTxRef(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t, 33)
	sale, _ := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")

	updated, err := svc.TransitionStatus(sale.ID, domain.SalePaymentSent, "BATCH-42")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if updated.CreatorPayTxID != "BATCH-42" {
		t.Errorf("tx ref = %q, want BATCH-42", updated.CreatorPayTxID)
	}
	if _, err := svc.TransitionStatus(sale.ID, domain.SaleDue, ""); err != domain.ErrInvalidTransition {
		t.Fatalf("PAYMENT_SENT -> DUE should be rejected, got %v", err)
	}
}

func TestMarkPlatformFeePaidLeavesStatus(t *testing.T) {
	svc, sales, _, _ := newLedgerFixture(t, 33)
	sale, _ := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")

	if err := svc.MarkPlatformFeePaid(sale.ID, "FEE-TX-1"); err != nil {
		t.Fatalf("mark fee paid: %v", err)
	}
	got := sales.sales[sale.ID]
	if !got.PlatformFeePaid || got.PlatformFeeTxID != "FEE-TX-1" {
		t.Errorf("fee flags = (%v, %q), want (true, FEE-TX-1)", got.PlatformFeePaid, got.PlatformFeeTxID)
	}
	if got.Status != domain.SalePending {
		t.Errorf("status = %q, fee settlement must not change it", got.Status)
	}
}

func TestAdminForceResolveFromDisputed(t *testing.T) {
	svc, sales, _, audit := newLedgerFixture(t, 33)
	sale, _ := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")
	svc.TransitionStatus(sale.ID, domain.SaleDisputed, "")

	resolved, err := svc.AdminForceResolve(sale.ID, domain.SalePaid, "admin-1", "10.0.0.9")
	if err != nil {
		t.Fatalf("force resolve: %v", err)
	}
	if resolved.Status != domain.SalePaid {
		t.Errorf("status = %q, want PAID", resolved.Status)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "sale.force_resolve" {
		t.Fatalf("audit entries = %+v, want one force_resolve entry", audit.entries)
	}
	if sales.sales[sale.ID].Status != domain.SalePaid {
		t.Errorf("store not updated")
	}
}

func TestAdminForceResolveRejectsOtherTargets(t *testing.T) {
	svc, _, _, _ := newLedgerFixture(t, 33)
	sale, _ := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")

	if _, err := svc.AdminForceResolve(sale.ID, domain.SaleDue, "admin-1", ""); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for DUE resolution, got %v", err)
	}
}

func TestSweepOverdue(t *testing.T) {
	svc, sales, _, _ := newLedgerFixture(t, 33)
	fresh, _ := svc.RecordSale("camp-1", "JAS10", 100, domain.VerifyManualEntry, "")
	overdue, _ := svc.RecordSale("camp-1", "JAS10", 50, domain.VerifyManualEntry, "")
	sales.sales[overdue.ID].ExpectedPayoutDate = time.Now().AddDate(0, 0, -1)

	promoted, err := svc.SweepOverdue(time.Now())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if promoted != 1 {
		t.Fatalf("promoted %d, want 1", promoted)
	}
	if sales.sales[overdue.ID].Status != domain.SaleDue {
		t.Errorf("overdue sale status = %q, want DUE", sales.sales[overdue.ID].Status)
	}
	if sales.sales[fresh.ID].Status != domain.SalePending {
		t.Errorf("fresh sale status = %q, want PENDING untouched", sales.sales[fresh.ID].Status)
	}
}
