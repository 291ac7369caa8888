package handler

import (
	"net/http"

	"commish/internal/domain"
	"commish/internal/middleware"
	"commish/internal/models"
	"commish/internal/repository"
	"commish/internal/service"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	ledger    *service.LedgerService
	importer  *service.ImportService
	saleRepo  *repository.SaleRepository
	campaigns *repository.CampaignRepository
	sync      changeNotifier
}

func NewSaleHandler(ledger *service.LedgerService, importer *service.ImportService, saleRepo *repository.SaleRepository, campaigns *repository.CampaignRepository, sync changeNotifier) *SaleHandler {
	return &SaleHandler{ledger: ledger, importer: importer, saleRepo: saleRepo, campaigns: campaigns, sync: sync}
}

type recordSaleRequest struct {
	CampaignID string  `json:"campaign_id" binding:"required"`
	Code       string  `json:"code" binding:"required"`
	Amount     float64 `json:"amount"`
	OrderID    string  `json:"order_id"`
}

// Record logs one sale by hand. Business-side; the campaign must belong to
// the caller.
func (h *SaleHandler) Record(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	campaign, err := h.campaigns.GetByID(req.CampaignID)
	if err != nil || campaign.BusinessID != middleware.GetUserID(c) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	sale, err := h.ledger.RecordSale(req.CampaignID, req.Code, req.Amount, domain.VerifyManualEntry, req.OrderID)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusCreated, gin.H{"sale": sale})
}

// ImportCSV loads a storefront sales export for the caller's campaigns.
func (h *SaleHandler) ImportCSV(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	defer file.Close()
	report, err := h.importer.ImportSalesCSV(middleware.GetUserID(c), file)
	if err != nil {
		respondError(c, err)
		return
	}
	if report.Imported > 0 {
		notifyChanged(h.sync)
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

func (h *SaleHandler) ListMine(c *gin.Context) {
	var (
		sales []models.SaleRecord
		err   error
	)
	if middleware.GetRole(c) == domain.RoleBusiness {
		sales, err = h.saleRepo.ListByBusiness(middleware.GetUserID(c))
	} else {
		sales, err = h.saleRepo.ListByCreator(middleware.GetUserID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (h *SaleHandler) Get(c *gin.Context) {
	sale, err := h.saleRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	userID := middleware.GetUserID(c)
	if sale.BusinessID != userID && sale.CreatorID != userID && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

type transitionRequest struct {
	Status string `json:"status" binding:"required,oneof=DUE PAYMENT_SENT PAID DISPUTED"`
	TxRef  string `json:"tx_ref"`
}

// Transition moves a sale through the settlement lifecycle. Creators may
// only confirm receipt (PAID) or dispute; businesses drive the rest.
func (h *SaleHandler) Transition(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sale, err := h.saleRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	userID := middleware.GetUserID(c)
	role := middleware.GetRole(c)
	switch role {
	case domain.RoleCreator:
		if sale.CreatorID != userID || (req.Status != domain.SalePaid && req.Status != domain.SaleDisputed) {
			c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
	case domain.RoleBusiness:
		if sale.BusinessID != userID {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
	case domain.RoleAdmin:
	default:
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	updated, err := h.ledger.TransitionStatus(sale.ID, req.Status, req.TxRef)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"sale": updated})
}

type platformFeeRequest struct {
	TxRef string `json:"tx_ref" binding:"required"`
}

// MarkPlatformFeePaid settles the treasury share of one sale. Status is
// untouched; only the fee flag and receipt reference change.
func (h *SaleHandler) MarkPlatformFeePaid(c *gin.Context) {
	var req platformFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sale, err := h.saleRepo.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if sale.BusinessID != middleware.GetUserID(c) && middleware.GetRole(c) != domain.RoleAdmin {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if err := h.ledger.MarkPlatformFeePaid(sale.ID, req.TxRef); err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"message": "platform fee settled"})
}
