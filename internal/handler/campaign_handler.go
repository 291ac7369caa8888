package handler

import (
	"net/http"

	"commish/internal/middleware"
	"commish/internal/models"
	"commish/internal/service"
	"commish/pkg/insights"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	svc      *service.CampaignService
	users    userGetter
	insights *insights.Client
	sync     changeNotifier
}

type userGetter interface {
	GetByID(id string) (*models.User, error)
}

// changeNotifier is the post-mutation hook; nil-safe via notifyChanged.
type changeNotifier interface {
	Changed()
}

func notifyChanged(n changeNotifier) {
	if n != nil {
		n.Changed()
	}
}

func NewCampaignHandler(svc *service.CampaignService, users userGetter, ic *insights.Client, sync changeNotifier) *CampaignHandler {
	return &CampaignHandler{svc: svc, users: users, insights: ic, sync: sync}
}

func (h *CampaignHandler) Create(c *gin.Context) {
	var req service.CampaignInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	business, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
		return
	}
	campaign, err := h.svc.Create(business, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusCreated, gin.H{"campaign": campaign})
}

func (h *CampaignHandler) Update(c *gin.Context) {
	var req service.CampaignInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	campaign, err := h.svc.Update(c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"campaign": campaign})
}

type campaignStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACTIVE PAUSED ENDED"`
}

func (h *CampaignHandler) SetStatus(c *gin.Context) {
	var req campaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	campaign, err := h.svc.SetStatus(c.Param("id"), middleware.GetUserID(c), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"campaign": campaign})
}

// ListOpen is the creator-facing catalog of campaigns accepting new links.
func (h *CampaignHandler) ListOpen(c *gin.Context) {
	campaigns, err := h.svc.ListOpen()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (h *CampaignHandler) ListMine(c *gin.Context) {
	campaigns, err := h.svc.ListByBusiness(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (h *CampaignHandler) Get(c *gin.Context) {
	campaign, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaign": campaign})
}

// Insights returns a short generated read on the offer terms. Degrades to a
// canned summary when the upstream service is unavailable.
func (h *CampaignHandler) Insights(c *gin.Context) {
	campaign, err := h.svc.GetByID(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	summary := h.insights.AnalyzeOffer(c.Request.Context(), insights.Offer{
		ProductName:      campaign.ProductName,
		ProductPrice:     campaign.ProductPrice,
		CommissionRate:   campaign.TotalCommissionRate,
		PaymentFrequency: campaign.PaymentFrequency,
		RefundPolicy:     campaign.RefundPolicy,
	})
	c.JSON(http.StatusOK, gin.H{"insights": summary})
}
