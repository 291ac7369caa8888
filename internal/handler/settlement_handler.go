package handler

import (
	"net/http"

	"commish/internal/domain"
	"commish/internal/middleware"
	"commish/internal/repository"
	"commish/internal/service"

	"github.com/gin-gonic/gin"
)

type SettlementHandler struct {
	svc      *service.SettlementService
	settings *repository.SettingRepository
	sync     changeNotifier
}

func NewSettlementHandler(svc *service.SettlementService, settings *repository.SettingRepository, sync changeNotifier) *SettlementHandler {
	return &SettlementHandler{svc: svc, settings: settings, sync: sync}
}

// scopeBusinessID narrows settlement queries to the caller's own records
// unless the caller is an admin, who sees platform-wide totals.
func scopeBusinessID(c *gin.Context) string {
	if middleware.GetRole(c) == domain.RoleAdmin {
		return c.Query("business_id")
	}
	return middleware.GetUserID(c)
}

// PlatformFeeSummary reports the outstanding treasury share plus where to
// send it, read from system settings.
func (h *SettlementHandler) PlatformFeeSummary(c *gin.Context) {
	total, saleIDs, err := h.svc.UnpaidPlatformFeeTotal(scopeBusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	method, _ := h.settings.Get(domain.SettingAdminPayoutMethod)
	identifier, _ := h.settings.Get(domain.SettingAdminPayoutIdentifier)
	network, _ := h.settings.Get(domain.SettingAdminPayoutNetwork)
	c.JSON(http.StatusOK, gin.H{
		"total":             total,
		"sale_ids":          saleIDs,
		"payout_method":     method,
		"payout_identifier": identifier,
		"payout_network":    network,
	})
}

func (h *SettlementHandler) CreatorPayouts(c *gin.Context) {
	payouts, err := h.svc.GroupCreatorPayouts(scopeBusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"payouts": payouts})
}

type batchRequest struct {
	SaleIDs []string `json:"sale_ids" binding:"required,min=1"`
	TxRef   string   `json:"tx_ref" binding:"required"`
}

func (h *SettlementHandler) MarkPlatformFeePaid(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := h.svc.MarkBatchPlatformFeePaid(req.SaleIDs, req.TxRef)
	if result.Processed > 0 {
		notifyChanged(h.sync)
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

func (h *SettlementHandler) MarkCreatorsPaid(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := h.svc.MarkBatchCreatorPaid(req.SaleIDs, req.TxRef)
	if result.Processed > 0 {
		notifyChanged(h.sync)
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// MassPayCSV downloads the open payout list in the mass-pay upload shape.
func (h *SettlementHandler) MassPayCSV(c *gin.Context) {
	payouts, err := h.svc.GroupCreatorPayouts(scopeBusinessID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	csv := service.MassPayCSV(payouts)
	c.Header("Content-Disposition", `attachment; filename="masspay.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(csv))
}
