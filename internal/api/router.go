package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"topup/internal/api/controllers"
	"topup/internal/config"
	"topup/internal/infra"
	"topup/pkg/middleware"
)

type Controllers struct {
	Orders   *controllers.OrderController
	Accounts *controllers.AccountController
	Webhooks *controllers.WebhookController
}

func NewRouter(cfg *config.Config, db *gorm.DB, log *zap.Logger, ctrl Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	RegisterRoutes(r, cfg, db, log, ctrl)
	return r
}

func RegisterRoutes(r *gin.Engine, cfg *config.Config, db *gorm.DB, log *zap.Logger, ctrl Controllers) {
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	api := r.Group("/api",
		middleware.SessionAuth([]byte(cfg.JWTSecret), log),
		limiter.Middleware(),
	)
	api.POST("/order", ctrl.Orders.CreateOrder)
	api.GET("/order/:id", ctrl.Orders.GetOrder)
	api.POST("/order/:id/cancel", ctrl.Orders.CancelOrder)
	api.GET("/account/coins", ctrl.Accounts.GetCoins)

	r.POST("/webhook/payment",
		middleware.WebhookAuth(middleware.WebhookCredentials{
			Key:           cfg.Webhook.Secret,
			MallID:        cfg.Webhook.MallID,
			SigningSecret: cfg.Webhook.SigningSecret,
		}, log),
		ctrl.Webhooks.HandlePayment,
	)

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := infra.Ping(ctx, db); err != nil {
			log.Error("health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.TraceIDHeader},
		ExposeHeaders: []string{middleware.TraceIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
