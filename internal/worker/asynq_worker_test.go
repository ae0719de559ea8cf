package worker

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/orderflow-next/internal/config"
	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/provider"
	"github.com/orderflow-next/internal/queue"
	"github.com/orderflow-next/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTestConsumer(t *testing.T) *Consumer {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	cfg := &config.Config{Metrics: config.MetricsConfig{Enabled: true, Namespace: "worker_test"}}
	return NewConsumer(provider.Build(cfg, db, nil))
}

func TestHandleSystemLogRecordPersistsLog(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	task, err := queue.NewSystemLogTask(queue.SystemLogPayload{
		ActorID:   42,
		ActorRole: constants.ActorRoleStaff,
		Action:    constants.SystemLogActionBulkApplied,
		StoreID:   3,
		RequestID: "req-worker",
		Detail:    map[string]interface{}{"operation_id": 9},
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}

	if err := consumer.handleSystemLogRecord(context.Background(), task); err != nil {
		t.Fatalf("handle system log failed: %v", err)
	}

	logs, total, err := consumer.SystemLogRepo.List(repository.SystemLogListFilter{StoreID: 3, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list logs failed: %v", err)
	}
	if total != 1 || len(logs) != 1 {
		t.Fatalf("expected 1 log, got total=%d len=%d", total, len(logs))
	}
	if logs[0].RequestID != "req-worker" || logs[0].ActorID != 42 {
		t.Fatalf("unexpected log: %+v", logs[0])
	}
}

func TestHandleSystemLogRecordRejectsBadPayload(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	task := asynq.NewTask(queue.TaskSystemLogRecord, []byte("{not-json"))
	if err := consumer.handleSystemLogRecord(context.Background(), task); err == nil {
		t.Fatalf("expected unmarshal error")
	}
}

func TestHandleOrderStatusChanged(t *testing.T) {
	consumer := setupWorkerTestConsumer(t)
	task, err := queue.NewOrderStatusChangedTask(queue.OrderStatusChangedPayload{
		OrderID:    5,
		StoreID:    3,
		FromStatus: constants.OrderStatusShipping,
		ToStatus:   constants.OrderStatusDelivered,
		ActorID:    7,
		ActorRole:  constants.ActorRoleCustomer,
		OccurredAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleOrderStatusChanged(context.Background(), task); err != nil {
		t.Fatalf("handle status changed failed: %v", err)
	}

	invalid := asynq.NewTask(queue.TaskOrderStatusChanged, []byte(`{"order_id":0}`))
	if err := consumer.handleOrderStatusChanged(context.Background(), invalid); err != nil {
		t.Fatalf("invalid payload should be skipped, got %v", err)
	}
	if err := consumer.handleOrderStatusChanged(context.Background(), nil); err != nil {
		t.Fatalf("nil task should be skipped, got %v", err)
	}
}

func TestNewServiceRequiresEnabledQueue(t *testing.T) {
	if _, err := NewService(&config.QueueConfig{Enabled: false}, &Consumer{}); err == nil {
		t.Fatalf("expected error when queue disabled")
	}
	if _, err := NewService(&config.QueueConfig{Enabled: true}, nil); err == nil {
		t.Fatalf("expected error when consumer nil")
	}
}
