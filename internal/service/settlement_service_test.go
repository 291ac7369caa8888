package service

import (
	"strings"
	"testing"
	"time"

	"commish/internal/domain"
	"commish/internal/models"

	"gorm.io/gorm"
)

type userStoreStub struct {
	users map[string]*models.User
}

func (s *userStoreStub) GetByID(id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newSettlementFixture(t *testing.T) (*SettlementService, *saleStoreStub) {
	t.Helper()
	sales := newSaleStoreStub()
	users := &userStoreStub{users: map[string]*models.User{
		"creator-1": {ID: "creator-1", Name: "Jasmine", PayoutMethod: "PAYPAL", PayoutIdentifier: "jasmine@pay.example"},
		"creator-2": {ID: "creator-2", Name: "Megan", PayoutMethod: "PAYPAL", PayoutIdentifier: "megan@pay.example"},
	}}
	links := newLinkStoreStub()
	campaigns := newCampaignStoreStub(activeCampaign("camp-1"))
	ledger := NewLedgerService(sales, links, campaigns, &settingsStub{}, nil, 33)
	return NewSettlementService(sales, users, ledger), sales
}

func seedSale(sales *saleStoreStub, id, businessID, creatorID, status string, creatorPay, platformFee float64, feePaid bool) {
	sales.sales[id] = &models.SaleRecord{
		ID:              id,
		BusinessID:      businessID,
		CreatorID:       creatorID,
		Status:          status,
		CreatorPay:      creatorPay,
		PlatformFee:     platformFee,
		PlatformFeePaid: feePaid,
		SaleDate:        time.Now(),
	}
}

func TestUnpaidPlatformFeeTotal(t *testing.T) {
	svc, sales := newSettlementFixture(t)
	seedSale(sales, "s1", "biz-1", "creator-1", domain.SalePending, 33.50, 16.50, false)
	seedSale(sales, "s2", "biz-1", "creator-1", domain.SaleDue, 10.00, 5.00, false)
	seedSale(sales, "s3", "biz-1", "creator-1", domain.SalePaid, 10.00, 5.00, true)
	seedSale(sales, "s4", "biz-2", "creator-2", domain.SalePending, 10.00, 7.25, false)

	total, saleIDs, err := svc.UnpaidPlatformFeeTotal("biz-1")
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total != 21.50 {
		t.Errorf("biz-1 total = %v, want 21.50", total)
	}
	if len(saleIDs) != 2 {
		t.Errorf("biz-1 sale ids = %v, want 2", saleIDs)
	}

	total, saleIDs, err = svc.UnpaidPlatformFeeTotal("")
	if err != nil {
		t.Fatalf("platform-wide total: %v", err)
	}
	if total != 28.75 {
		t.Errorf("platform-wide total = %v, want 28.75", total)
	}
	if len(saleIDs) != 3 {
		t.Errorf("platform-wide sale ids = %v, want 3", saleIDs)
	}
}

func TestGroupCreatorPayouts(t *testing.T) {
	svc, sales := newSettlementFixture(t)
	seedSale(sales, "s1", "biz-1", "creator-1", domain.SalePending, 33.50, 16.50, false)
	seedSale(sales, "s2", "biz-1", "creator-1", domain.SaleDisputed, 10.00, 5.00, false)
	seedSale(sales, "s3", "biz-1", "creator-2", domain.SaleDue, 20.00, 9.00, false)
	seedSale(sales, "s4", "biz-1", "creator-1", domain.SalePaid, 99.00, 1.00, true)

	payouts, err := svc.GroupCreatorPayouts("biz-1")
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(payouts) != 2 {
		t.Fatalf("payouts = %+v, want 2 creators", payouts)
	}
	// Sorted by creator name: Jasmine before Megan.
	if payouts[0].CreatorName != "Jasmine" || payouts[1].CreatorName != "Megan" {
		t.Errorf("order = %q, %q", payouts[0].CreatorName, payouts[1].CreatorName)
	}
	if payouts[0].Total != 43.50 {
		t.Errorf("Jasmine total = %v, want 43.50 (disputed still owed)", payouts[0].Total)
	}
	if len(payouts[0].SaleIDs) != 2 {
		t.Errorf("Jasmine sale ids = %v, want 2", payouts[0].SaleIDs)
	}
	if payouts[0].PayoutIdentifier != "jasmine@pay.example" {
		t.Errorf("payout identifier = %q", payouts[0].PayoutIdentifier)
	}
}

func TestMarkBatchCreatorPaidSkipsBadIDs(t *testing.T) {
	svc, sales := newSettlementFixture(t)
	seedSale(sales, "s1", "biz-1", "creator-1", domain.SaleDue, 20.00, 9.00, false)

	result := svc.MarkBatchCreatorPaid([]string{"s1", "missing"}, "MASS-7")
	if result.Processed != 1 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want 1 processed / 1 skipped", result)
	}
	if sales.sales["s1"].Status != domain.SalePaymentSent {
		t.Errorf("status = %q, want PAYMENT_SENT", sales.sales["s1"].Status)
	}
	if sales.sales["s1"].CreatorPayTxID != "MASS-7" {
		t.Errorf("tx ref = %q, want MASS-7", sales.sales["s1"].CreatorPayTxID)
	}
}

func TestMarkBatchCreatorPaidSkipsIneligible(t *testing.T) {
	svc, sales := newSettlementFixture(t)
	seedSale(sales, "s1", "biz-1", "creator-1", domain.SalePaid, 20.00, 9.00, true)

	result := svc.MarkBatchCreatorPaid([]string{"s1"}, "MASS-8")
	if result.Processed != 0 || result.Skipped != 1 {
		t.Fatalf("result = %+v, want 0 processed / 1 skipped for terminal sale", result)
	}
}

func TestMarkBatchPlatformFeePaid(t *testing.T) {
	svc, sales := newSettlementFixture(t)
	seedSale(sales, "s1", "biz-1", "creator-1", domain.SalePending, 20.00, 9.00, false)
	seedSale(sales, "s2", "biz-1", "creator-1", domain.SaleDue, 20.00, 9.00, false)

	result := svc.MarkBatchPlatformFeePaid([]string{"s1", "s2"}, "FEE-BATCH-1")
	if result.Processed != 2 || result.Skipped != 0 {
		t.Fatalf("result = %+v, want 2 processed", result)
	}
	for _, id := range []string{"s1", "s2"} {
		if !sales.sales[id].PlatformFeePaid || sales.sales[id].PlatformFeeTxID != "FEE-BATCH-1" {
			t.Errorf("%s fee flags = (%v, %q)", id, sales.sales[id].PlatformFeePaid, sales.sales[id].PlatformFeeTxID)
		}
	}
}

func TestMassPayCSV(t *testing.T) {
	payouts := []CreatorPayout{
		{CreatorName: "Jasmine", PayoutIdentifier: "jasmine@pay.example", Total: 43.5, SaleIDs: []string{"s1", "s2"}},
		{CreatorName: "NoInfo", Total: 10, SaleIDs: []string{"s3"}},
	}
	csv := MassPayCSV(payouts)
	lines := strings.Split(strings.TrimSpace(csv), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows", len(lines))
	}
	if lines[0] != "Recipient Email,Amount,Currency,Note,Reference ID" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "jasmine@pay.example,43.50,USD,Commission Payout,2_SALES" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "MISSING_INFO,10.00") {
		t.Errorf("row 2 = %q, want MISSING_INFO placeholder", lines[2])
	}
}
