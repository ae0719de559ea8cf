package router

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/orderflow-next/internal/cache"
	"github.com/orderflow-next/internal/config"
	"github.com/orderflow-next/internal/constants"
	adminhandlers "github.com/orderflow-next/internal/http/handlers/admin"
	publichandlers "github.com/orderflow-next/internal/http/handlers/public"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按顾客/员工分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	bulkRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:bulk", redisPrefix),
		WindowSeconds: cfg.Security.BulkRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.BulkRateLimit.MaxRequests,
		BlockSeconds:  cfg.Security.BulkRateLimit.BlockSeconds,
		Message:       "bulk_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	apiV1 := r.Group("/api/v1")
	{
		// 顾客接口
		customer := apiV1.Group("/orders")
		customer.Use(ActorAuthMiddleware(c.ActorTokenService, constants.ActorRoleCustomer))
		{
			customer.GET("", publicHandler.ListOrders)
			customer.POST("", publicHandler.CreateOrder)
			customer.GET("/:id", publicHandler.GetOrder)
			customer.POST("/:id/cancel", publicHandler.CancelOrder)
			customer.POST("/:id/confirm-receipt", publicHandler.ConfirmReceipt)
		}

		// 门店员工接口
		staff := apiV1.Group("/staff")
		staff.Use(ActorAuthMiddleware(c.ActorTokenService, constants.ActorRoleStaff))
		{
			limited := RateLimitMiddleware(redisClient, bulkRule, KeyByActor)

			staff.GET("/orders", adminHandler.ListOrders)
			staff.GET("/orders/:id", adminHandler.GetOrder)
			staff.PUT("/orders/:id/status", adminHandler.UpdateOrderStatus)
			staff.POST("/orders/bulk", limited, adminHandler.ApplyBulkTransition)

			staff.GET("/bulk-operations", adminHandler.ListBulkOperations)
			staff.GET("/bulk-operations/:id", adminHandler.GetBulkOperation)
			staff.POST("/bulk-operations/rollback-last", limited, adminHandler.RollbackLastBulkOperation)
			staff.POST("/bulk-operations/:id/rollback", limited, adminHandler.RollbackBulkOperation)

			staff.GET("/system-logs", adminHandler.ListSystemLogs)
		}
	}

	if c.Metrics != nil {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(c.Metrics.Handler()))
	}

	// 健康检查
	r.GET("/healthz", func(ctx *gin.Context) {
		status := gin.H{"status": "ok"}
		if cache.Enabled() {
			if err := cache.Ping(ctx.Request.Context()); err != nil {
				status["redis"] = "unavailable"
			} else {
				status["redis"] = "ok"
			}
		}
		ctx.JSON(http.StatusOK, status)
	})

	return r
}
