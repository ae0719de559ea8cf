package provider

import (
	"errors"

	"github.com/orderflow-next/internal/cache"
	"github.com/orderflow-next/internal/config"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/metrics"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/queue"
	"github.com/orderflow-next/internal/repository"
	"github.com/orderflow-next/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	DB          *gorm.DB
	QueueClient *queue.Client
	Metrics     *metrics.Recorder

	// Repositories
	OrderRepo         repository.OrderRepository
	InventoryRepo     repository.InventoryRepository
	BulkOperationRepo repository.BulkOperationRepository
	SystemLogRepo     repository.SystemLogRepository

	// Services
	Events                *service.EventPublisher
	ActorTokenService     *service.ActorTokenService
	OrderLifecycleService *service.OrderLifecycleService
	OrderCreateService    *service.OrderCreateService
	OrderQueryService     *service.OrderQueryService
	BulkTransitionService *service.BulkTransitionService
	RollbackService       *service.RollbackService
	BulkOperationQuery    *service.BulkOperationQueryService
	SystemLogService      *service.SystemLogService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	return Build(cfg, models.DB, queueClient)
}

// Build 基于已有数据库与队列客户端组装容器
func Build(cfg *config.Config, db *gorm.DB, queueClient *queue.Client) *Container {
	c := &Container{
		Config:      cfg,
		DB:          db,
		QueueClient: queueClient,
	}
	if cfg.Metrics.Enabled {
		c.Metrics = metrics.NewRecorder(cfg.Metrics.Namespace)
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := c.DB
	c.OrderRepo = repository.NewOrderRepository(db)
	c.InventoryRepo = repository.NewInventoryRepository(db)
	c.BulkOperationRepo = repository.NewBulkOperationRepository(db)
	c.SystemLogRepo = repository.NewSystemLogRepository(db)
}

func (c *Container) initServices() {
	c.Events = service.NewEventPublisher(c.QueueClient)
	c.ActorTokenService = service.NewActorTokenService(c.Config.ActorJWT)
	c.OrderLifecycleService = service.NewOrderLifecycleService(c.DB, c.OrderRepo, c.Events, c.Metrics)
	c.OrderCreateService = service.NewOrderCreateService(c.DB, c.OrderRepo, c.InventoryRepo, c.Events, c.Metrics, service.OrderCreateOptions{
		CodePrefix:  c.Config.Order.CodePrefix,
		MaxItems:    c.Config.Order.MaxItems,
		MaxQuantity: c.Config.Order.MaxQuantity,
	})
	c.OrderQueryService = service.NewOrderQueryService(c.DB, c.OrderRepo)
	c.BulkTransitionService = service.NewBulkTransitionService(c.DB, c.OrderRepo, c.BulkOperationRepo, c.Events, c.Metrics)
	c.RollbackService = service.NewRollbackService(c.DB, c.OrderRepo, c.BulkOperationRepo, c.Events, c.Metrics)
	c.BulkOperationQuery = service.NewBulkOperationQueryService(c.DB, c.BulkOperationRepo)
	c.SystemLogService = service.NewSystemLogService(c.SystemLogRepo)
}

// Close 释放队列客户端与 Redis 连接
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if err := c.QueueClient.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := cache.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
