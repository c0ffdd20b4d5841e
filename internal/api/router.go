package api

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"beo-inventory-backend/config"
	"beo-inventory-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router. Idle rate limiter
// entries are pruned until ctx is done.
func NewRouter(ctx context.Context, d Deps, cfg config.ServerConfig) *gin.Engine {
	r := gin.Default()

	if len(cfg.AllowedOrigins) > 0 {
		corsCfg := cors.DefaultConfig()
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, mw.OperatorHeader)
		r.Use(cors.New(corsCfg))
	}

	handler := NewHandler(d)

	limiter := mw.NewIPRateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	limiter.StartPruning(ctx, time.Minute, 10*time.Minute)

	statsCache := mw.NewResponseCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API group
	api := r.Group("/api")
	api.Use(limiter.Middleware())
	{
		api.GET("/items", handler.ListItems)
		api.GET("/items/:id", handler.GetItem)
		api.GET("/items/:id/history", handler.ListItemHistory)
		api.GET("/items/:id/loans/active", handler.ListItemActiveLoans)
		api.GET("/loans/overdue", handler.ListOverdueLoans)
		api.GET("/loans/:id", handler.GetLoan)
		api.GET("/beneficiaries/:id/loans", handler.ListBeneficiaryLoans)
		api.GET("/members/:id/loans", handler.ListMemberLoans)
		api.GET("/stats", statsCache.Middleware(), handler.GetStats)
		api.GET("/integrity", handler.CheckIntegrity)
		api.GET("/alerts/public-key", handler.GetAlertPublicKey)
	}

	// Mutations need to know who is acting.
	write := api.Group("", mw.RequireOperator(), statsCache.FlushOnWrite())
	{
		write.POST("/items", handler.CreateItem)
		write.POST("/items/:id/deactivate", handler.DeactivateItem)
		write.POST("/items/:id/status", handler.ChangeItemStatus)
		write.POST("/loans", handler.CreateLoan)
		write.POST("/loans/:id/return", handler.ReturnLoan)
		write.POST("/locations", handler.CreateLocation)
		write.POST("/categories", handler.CreateCategory)
		write.POST("/lodges", handler.CreateLodge)
		write.POST("/members", handler.CreateMember)
		write.POST("/beneficiaries", handler.CreateBeneficiary)
		write.PATCH("/beneficiaries/:id/contact", handler.UpdateBeneficiaryContact)
		write.POST("/integrity/repair", handler.RepairIntegrity)
		write.PUT("/alert-subscriptions", handler.PutSubscription)
		write.DELETE("/alert-subscriptions", handler.DeleteSubscription)
	}

	return r
}
