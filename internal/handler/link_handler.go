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

type LinkHandler struct {
	svc      *service.RegistryService
	linkRepo *repository.LinkRepository
	users    userGetter
	sync     changeNotifier
}

func NewLinkHandler(svc *service.RegistryService, linkRepo *repository.LinkRepository, users userGetter, sync changeNotifier) *LinkHandler {
	return &LinkHandler{svc: svc, linkRepo: linkRepo, users: users, sync: sync}
}

type requestLinkRequest struct {
	CampaignID string `json:"campaign_id" binding:"required"`
}

// Request opens a pending link for the signed-in creator on a campaign.
// Repeats return the existing link rather than an error.
func (h *LinkHandler) Request(c *gin.Context) {
	var req requestLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	creator, err := h.users.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
		return
	}
	link, err := h.svc.RequestLink(req.CampaignID, creator.ID, creator.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusCreated, gin.H{"link": link})
}

type assignLinkRequest struct {
	// Code is optional; when omitted a code is generated from the
	// campaign's product name.
	Code           string `json:"code"`
	DestinationURL string `json:"destination_url" binding:"required"`
	DiscountCode   string `json:"discount_code"`
}

// Assign attaches the tracking code and destination, activating the link.
// Business-side: the owner of the campaign behind the link does this.
func (h *LinkHandler) Assign(c *gin.Context) {
	var req assignLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.ownsLinkCampaign(c, c.Param("id")) {
		return
	}
	link, err := h.svc.AssignLink(c.Param("id"), req.Code, req.DestinationURL, req.DiscountCode)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"link": link})
}

type updateLinkRequest struct {
	Code           string `json:"code" binding:"required"`
	DestinationURL string `json:"destination_url" binding:"required"`
}

func (h *LinkHandler) Update(c *gin.Context) {
	var req updateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !h.ownsLinkCampaign(c, c.Param("id")) {
		return
	}
	link, err := h.svc.UpdateLinkDetails(c.Param("id"), req.Code, req.DestinationURL)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (h *LinkHandler) ListMine(c *gin.Context) {
	var (
		links []models.AffiliateLink
		err   error
	)
	if middleware.GetRole(c) == domain.RoleBusiness {
		links, err = h.linkRepo.ListByBusiness(middleware.GetUserID(c))
	} else {
		links, err = h.linkRepo.ListByCreator(middleware.GetUserID(c))
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"links": links})
}

// ownsLinkCampaign guards business-side link mutations: the caller must own
// the campaign the link hangs off. Writes the error response on failure.
func (h *LinkHandler) ownsLinkCampaign(c *gin.Context, linkID string) bool {
	links, err := h.linkRepo.ListByBusiness(middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return false
	}
	for i := range links {
		if links[i].ID == linkID {
			return true
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	return false
}
