package handler

import (
	"net/http"
	"strconv"
	"time"

	"commish/internal/middleware"
	"commish/internal/repository"
	"commish/internal/service"
	"commish/pkg/vault"

	"github.com/gin-gonic/gin"
)

// AdminHandler is the operator console: dispute resolution, account bans,
// platform settings, the full data export/import and the vault controls.
type AdminHandler struct {
	ledger    *service.LedgerService
	snapshots *service.SnapshotService
	userRepo  *repository.UserRepository
	settings  *repository.SettingRepository
	auditRepo *repository.AuditLogRepository
	vault     *vault.Vault
	sync      changeNotifier
}

func NewAdminHandler(ledger *service.LedgerService, snapshots *service.SnapshotService, userRepo *repository.UserRepository, settings *repository.SettingRepository, auditRepo *repository.AuditLogRepository, v *vault.Vault, sync changeNotifier) *AdminHandler {
	return &AdminHandler{
		ledger:    ledger,
		snapshots: snapshots,
		userRepo:  userRepo,
		settings:  settings,
		auditRepo: auditRepo,
		vault:     v,
		sync:      sync,
	}
}

type forceResolveRequest struct {
	Resolution string `json:"resolution" binding:"required,oneof=PAID PENDING"`
}

// ForceResolve settles a disputed sale by decree. The only way out of
// DISPUTED, and the only path that can reopen a PAID sale.
func (h *AdminHandler) ForceResolve(c *gin.Context) {
	var req forceResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sale, err := h.ledger.AdminForceResolve(c.Param("id"), req.Resolution, middleware.GetUserID(c), c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"sale": sale})
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.userRepo.List()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) BanUser(c *gin.Context) {
	if err := h.userRepo.Ban(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"message": "user banned"})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	settings, err := h.settings.GetAll()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type settingRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

func (h *AdminHandler) SetSetting(c *gin.Context) {
	var req settingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.settings.Set(req.Key, req.Value); err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{"message": "setting updated"})
}

func (h *AdminHandler) ListAuditLog(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := h.auditRepo.ListRecent(limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// SweepNow runs the overdue promotion immediately instead of waiting for
// the background interval.
func (h *AdminHandler) SweepNow(c *gin.Context) {
	promoted, err := h.ledger.SweepOverdue(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	if promoted > 0 {
		notifyChanged(h.sync)
	}
	c.JSON(http.StatusOK, gin.H{"promoted": promoted})
}

// ExportSnapshot downloads the full data set as JSON.
func (h *AdminHandler) ExportSnapshot(c *gin.Context) {
	snap, err := h.snapshots.Export()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="commish-snapshot.json"`)
	c.IndentedJSON(http.StatusOK, snap)
}

// ImportSnapshot replaces the data set with an uploaded export. ?force=true
// overrides the staleness check.
func (h *AdminHandler) ImportSnapshot(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}
	defer file.Close()
	force := c.Query("force") == "true"
	snap, err := h.snapshots.Import(file, force)
	if err != nil {
		respondError(c, err)
		return
	}
	notifyChanged(h.sync)
	c.JSON(http.StatusOK, gin.H{
		"message":   "snapshot imported",
		"timestamp": snap.Timestamp,
		"users":     len(snap.Users),
		"sales":     len(snap.Sales),
	})
}

// FlushVault forces the debounced file sink to write now.
func (h *AdminHandler) FlushVault(c *gin.Context) {
	if h.vault == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "vault not configured"})
		return
	}
	if err := h.vault.Flush(); err != nil {
		if err == vault.ErrPermissionRequired {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "vault flushed", "path": h.vault.Path()})
}
