package router

import (
	"net/http"

	"github.com/Benediks/Sidaya/internal/audit"
	"github.com/Benediks/Sidaya/internal/config"
	"github.com/Benediks/Sidaya/internal/handler"
	"github.com/Benediks/Sidaya/internal/inventory"
	"github.com/Benediks/Sidaya/internal/logger"
	"github.com/Benediks/Sidaya/internal/metrics"
	"github.com/Benediks/Sidaya/internal/middleware"
	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/promo"
	"github.com/Benediks/Sidaya/internal/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services bundles what the handlers need.
type Services struct {
	DB        *gorm.DB
	Inventory *inventory.Service
	Engine    *inventory.Engine
	Promos    *promo.Service
	Exporter  *report.Exporter
	Activity  *audit.Store
}

// NewServices wires the domain services on top of db.
func NewServices(db *gorm.DB, log *zap.Logger) *Services {
	store := audit.NewStore(db)
	return &Services{
		DB:        db,
		Inventory: inventory.NewService(db, logger.Named(log, "svc.inventory")),
		Engine:    inventory.NewEngine(db, store, logger.Named(log, "svc.ingest")),
		Promos:    promo.NewService(db, logger.Named(log, "svc.promo")),
		Exporter:  report.NewExporter(db, store, logger.Named(log, "svc.report")),
		Activity:  store,
	}
}

// SetupRouter configures the Gin engine and the JSON API.
func SetupRouter(cfg *config.Config, svc *Services, log *zap.Logger) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger.Named(log, "http")))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(svc.DB, jwtSecret, cfg.JWT.Issuer, cfg.JWT.ExpireHours)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(jwtSecret, svc.DB))
	ownerOnly := middleware.RequireRole(models.RoleOwner)

	protected.GET("/me", handler.GetMe)

	stockHandler := handler.NewStockHandler(svc.Inventory, svc.Exporter)
	protected.GET("/stok", stockHandler.List)
	protected.POST("/stok", stockHandler.Create)
	protected.GET("/stok/export", stockHandler.Export)
	protected.GET("/stok/:id", stockHandler.Get)
	protected.PUT("/stok/:id", stockHandler.Update)
	protected.DELETE("/stok/:id", ownerOnly, stockHandler.Delete)

	menuHandler := handler.NewMenuHandler(svc.Inventory)
	protected.GET("/menu", menuHandler.List)
	protected.POST("/menu", menuHandler.Create)
	protected.POST("/menu/recalculate", ownerOnly, menuHandler.Recalculate)
	protected.GET("/menu/:id", menuHandler.Get)
	protected.GET("/menu/:id/details", menuHandler.Details)
	protected.PUT("/menu/:id", menuHandler.Update)
	protected.DELETE("/menu/:id", ownerOnly, menuHandler.Delete)

	promoHandler := handler.NewPromoHandler(svc.Promos)
	protected.GET("/promo", promoHandler.List)
	protected.POST("/promo", promoHandler.Create)
	protected.GET("/promo/:id", promoHandler.Get)
	protected.PUT("/promo/:id", promoHandler.Update)
	protected.DELETE("/promo/:id", ownerOnly, promoHandler.Delete)

	trxHandler := handler.NewTransactionHandler(svc.Engine, svc.Exporter, cfg.App.UploadMaxMB, logger.Named(log, "handlers.transactions"))
	protected.POST("/transactions/upload", trxHandler.Upload)
	protected.POST("/transactions/batch", trxHandler.Batch)
	protected.GET("/transactions/export", trxHandler.Export)

	activityHandler := handler.NewActivityHandler(svc.Activity, cfg.App.PageSize)
	protected.GET("/activity-logs", activityHandler.List)
	protected.GET("/activity-logs/stats", activityHandler.Stats)

	dashboardHandler := handler.NewDashboardHandler(svc.DB)
	protected.GET("/dashboard", dashboardHandler.Get)

	return r
}
