package router

import (
	"time"

	"commish/config"
	"commish/internal/handler"
	"commish/internal/middleware"
	"commish/internal/repository"
	"commish/internal/service"
	"commish/internal/ws"
	"commish/pkg/insights"
	"commish/pkg/vault"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup wires repositories, services and handlers onto the HTTP surface.
// The ledger service is returned so main can start the overdue sweep.
func Setup(cfg *config.Config, db *gorm.DB, v *vault.Vault, hub *ws.Hub) (*gin.Engine, *service.LedgerService, *service.SyncService) {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Repositories
	userRepo := repository.NewUserRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	linkRepo := repository.NewLinkRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	snapshotRepo := repository.NewSnapshotRepository(db)

	// Services
	syncSvc := service.NewSyncService(hub, v)
	authSvc := service.NewAuthService(cfg, userRepo)
	registrySvc := service.NewRegistryService(linkRepo, campaignRepo)
	campaignSvc := service.NewCampaignService(campaignRepo, registrySvc)
	ledgerSvc := service.NewLedgerService(saleRepo, linkRepo, campaignRepo, settingRepo, auditRepo, cfg.Ledger.PlatformSplitPercent)
	redirectSvc := service.NewRedirectService(registrySvc, campaignRepo)
	settlementSvc := service.NewSettlementService(saleRepo, userRepo, ledgerSvc)
	importSvc := service.NewImportService(saleRepo, linkRepo, campaignRepo, ledgerSvc)
	snapshotSvc := service.NewSnapshotService(snapshotRepo, settingRepo)
	insightsClient := insights.NewClient(cfg.Insights.BaseURL, cfg.Insights.APIKey, cfg.Insights.Timeout)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, auditRepo)
	meHandler := handler.NewMeHandler(userRepo, syncSvc)
	campaignHandler := handler.NewCampaignHandler(campaignSvc, userRepo, insightsClient, syncSvc)
	linkHandler := handler.NewLinkHandler(registrySvc, linkRepo, userRepo, syncSvc)
	saleHandler := handler.NewSaleHandler(ledgerSvc, importSvc, saleRepo, campaignRepo, syncSvc)
	settlementHandler := handler.NewSettlementHandler(settlementSvc, settingRepo, syncSvc)
	redirectHandler := handler.NewRedirectHandler(redirectSvc)
	adminHandler := handler.NewAdminHandler(ledgerSvc, snapshotSvc, userRepo, settingRepo, auditRepo, v, syncSvc)

	authMw := middleware.AuthRequired(&cfg.JWT)
	businessMw := middleware.RequireRole("BUSINESS")
	creatorMw := middleware.RequireRole("CREATOR")
	adminMw := middleware.AdminRequired()

	// Public redirect bridge; rate-limited because it takes anonymous traffic.
	redirectLimiter := middleware.NewInMemoryRateLimiter(60, time.Minute)
	r.GET("/go", middleware.RateLimit(redirectLimiter), redirectHandler.Go)

	r.GET("/ws/events", ws.UpgradeEventsWS(&cfg.JWT, hub))

	api := r.Group("/api/v1")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
			authGroup.PATCH("/change-password", authMw, authHandler.ChangePassword)
		}

		me := api.Group("/me")
		me.Use(authMw)
		{
			me.GET("/profile", meHandler.Get)
			me.PATCH("/payout-details", meHandler.UpdatePayoutDetails)
			me.GET("/links", linkHandler.ListMine)
			me.GET("/sales", saleHandler.ListMine)
		}

		campaigns := api.Group("/campaigns")
		campaigns.Use(authMw)
		{
			campaigns.GET("", campaignHandler.ListOpen)
			campaigns.GET("/mine", businessMw, campaignHandler.ListMine)
			campaigns.GET("/:id", campaignHandler.Get)
			campaigns.GET("/:id/insights", campaignHandler.Insights)
			campaigns.POST("", businessMw, campaignHandler.Create)
			campaigns.PUT("/:id", businessMw, campaignHandler.Update)
			campaigns.PATCH("/:id/status", businessMw, campaignHandler.SetStatus)
		}

		links := api.Group("/links")
		links.Use(authMw)
		{
			links.POST("/request", creatorMw, linkHandler.Request)
			links.POST("/:id/assign", businessMw, linkHandler.Assign)
			links.PUT("/:id", businessMw, linkHandler.Update)
		}

		sales := api.Group("/sales")
		sales.Use(authMw)
		{
			sales.POST("", businessMw, saleHandler.Record)
			sales.POST("/import", businessMw, saleHandler.ImportCSV)
			sales.GET("/:id", saleHandler.Get)
			sales.POST("/:id/transition", saleHandler.Transition)
			sales.POST("/:id/platform-fee", saleHandler.MarkPlatformFeePaid)
		}

		settlement := api.Group("/settlement")
		settlement.Use(authMw, middleware.RequireRole("BUSINESS", "ADMIN"))
		{
			settlement.GET("/platform-fees", settlementHandler.PlatformFeeSummary)
			settlement.GET("/creator-payouts", settlementHandler.CreatorPayouts)
			settlement.GET("/masspay.csv", settlementHandler.MassPayCSV)
			settlement.POST("/platform-fees/mark-paid", settlementHandler.MarkPlatformFeePaid)
			settlement.POST("/creator-payouts/mark-paid", settlementHandler.MarkCreatorsPaid)
		}

		admin := api.Group("/admin")
		admin.Use(authMw, adminMw)
		{
			admin.GET("/users", adminHandler.ListUsers)
			admin.POST("/users/:id/ban", adminHandler.BanUser)
			admin.POST("/sales/:id/force-resolve", adminHandler.ForceResolve)
			admin.POST("/sweep", adminHandler.SweepNow)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.SetSetting)
			admin.GET("/audit-log", adminHandler.ListAuditLog)
			admin.GET("/snapshot", adminHandler.ExportSnapshot)
			admin.POST("/snapshot", adminHandler.ImportSnapshot)
			admin.POST("/vault/flush", adminHandler.FlushVault)
		}
	}

	return r, ledgerSvc, syncSvc
}
