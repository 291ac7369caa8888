package handler

import (
	"net/http"

	"commish/internal/middleware"
	"commish/internal/repository"

	"github.com/gin-gonic/gin"
)

type MeHandler struct {
	userRepo *repository.UserRepository
	sync     changeNotifier
}

func NewMeHandler(userRepo *repository.UserRepository, sync changeNotifier) *MeHandler {
	return &MeHandler{userRepo: userRepo, sync: sync}
}

func (h *MeHandler) Get(c *gin.Context) {
	u, err := h.userRepo.GetByID(middleware.GetUserID(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

type payoutDetailsRequest struct {
	PayoutMethod     string `json:"payout_method" binding:"required"`
	PayoutIdentifier string `json:"payout_identifier" binding:"required"`
	PayoutNetwork    string `json:"payout_network"`
}

// UpdatePayoutDetails sets where the creator's commission payments go.
func (h *MeHandler) UpdatePayoutDetails(c *gin.Context) {
	var req payoutDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.userRepo.UpdatePayoutDetails(middleware.GetUserID(c), req.PayoutMethod, req.PayoutIdentifier, req.PayoutNetwork); err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"message": "payout details updated"})
}
