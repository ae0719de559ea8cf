package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/metrics"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/queue"
	"github.com/orderflow-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var orderCodeSeq uint64

type recordingEnqueuer struct {
	mu           sync.Mutex
	statusEvents []queue.OrderStatusChangedPayload
	systemLogs   []queue.SystemLogPayload
	err          error
}

func (r *recordingEnqueuer) EnqueueOrderStatusChanged(payload queue.OrderStatusChangedPayload, _ ...asynq.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statusEvents = append(r.statusEvents, payload)
	return r.err
}

func (r *recordingEnqueuer) EnqueueSystemLog(payload queue.SystemLogPayload, _ ...asynq.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.systemLogs = append(r.systemLogs, payload)
	return r.err
}

type serviceTestEnv struct {
	db            *gorm.DB
	orderRepo     *repository.GormOrderRepository
	bulkRepo      *repository.GormBulkOperationRepository
	inventoryRepo *repository.GormInventoryRepository
	queue         *recordingEnqueuer
	events        *EventPublisher
	metrics       *metrics.Recorder
}

func setupServiceTestEnv(t *testing.T) *serviceTestEnv {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db failed: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	recorder := &recordingEnqueuer{}
	return &serviceTestEnv{
		db:            db,
		orderRepo:     repository.NewOrderRepository(db),
		bulkRepo:      repository.NewBulkOperationRepository(db),
		inventoryRepo: repository.NewInventoryRepository(db),
		queue:         recorder,
		events:        &EventPublisher{queue: recorder},
		metrics:       metrics.NewRecorder("test"),
	}
}

func (env *serviceTestEnv) lifecycle() *OrderLifecycleService {
	return NewOrderLifecycleService(env.db, env.orderRepo, env.events, env.metrics)
}

func (env *serviceTestEnv) bulk() *BulkTransitionService {
	return NewBulkTransitionService(env.db, env.orderRepo, env.bulkRepo, env.events, env.metrics)
}

func (env *serviceTestEnv) rollback() *RollbackService {
	return NewRollbackService(env.db, env.orderRepo, env.bulkRepo, env.events, env.metrics)
}

func (env *serviceTestEnv) creator() *OrderCreateService {
	return NewOrderCreateService(env.db, env.orderRepo, env.inventoryRepo, env.events, env.metrics, OrderCreateOptions{})
}

func (env *serviceTestEnv) seedOrder(t *testing.T, storeID, customerID uint, status constants.OrderStatus, paid bool) *models.Order {
	t.Helper()
	seq := atomic.AddUint64(&orderCodeSeq, 1)
	order := &models.Order{
		OrderCode:     fmt.Sprintf("TS%011d", seq),
		CustomerID:    customerID,
		StoreID:       storeID,
		Status:        status,
		Paid:          paid,
		TotalAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		PaymentMethod: constants.PaymentMethodCOD,
	}
	if err := env.db.Create(order).Error; err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func (env *serviceTestEnv) reload(t *testing.T, orderID uint) models.Order {
	t.Helper()
	var order models.Order
	if err := env.db.First(&order, orderID).Error; err != nil {
		t.Fatalf("reload order %d failed: %v", orderID, err)
	}
	return order
}

func (env *serviceTestEnv) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var total int64
	if err := env.db.Model(model).Count(&total).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	return total
}

func assertCode(t *testing.T, err error, want ErrorCode) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error code %s, got nil", want)
	}
	if got := CodeOf(err); got != want {
		t.Fatalf("expected error code %s, got %s (%v)", want, got, err)
	}
}

func sameOrderRow(a, b models.Order) bool {
	return a.Status == b.Status &&
		a.Paid == b.Paid &&
		a.EmployeeID == b.EmployeeID &&
		a.CustomerID == b.CustomerID &&
		a.StoreID == b.StoreID &&
		a.TotalAmount.Equal(b.TotalAmount.Decimal) &&
		a.UpdatedAt.Equal(b.UpdatedAt)
}

var testCtx = context.Background()
