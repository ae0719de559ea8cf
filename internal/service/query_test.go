package service

import (
	"testing"
	"time"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/repository"
)

func TestOrderQueryScopesByActor(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := NewOrderQueryService(env.db, env.orderRepo)
	order := env.seedOrder(t, 1, 7, constants.OrderStatusProcessing, false)

	if _, err := svc.GetForCustomer(testCtx, order.ID, 7); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	_, err := svc.GetForCustomer(testCtx, order.ID, 8)
	assertCode(t, err, CodeForbidden)

	if _, err := svc.GetForStaff(testCtx, order.ID, 1); err != nil {
		t.Fatalf("staff lookup failed: %v", err)
	}
	_, err = svc.GetForStaff(testCtx, order.ID, 2)
	assertCode(t, err, CodeForbidden)

	_, err = svc.GetForStaff(testCtx, 99999, 1)
	assertCode(t, err, CodeNotFound)
}

func TestOrderQueryListRejectsUnknownStatus(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := NewOrderQueryService(env.db, env.orderRepo)
	env.seedOrder(t, 1, 7, constants.OrderStatusProcessing, false)
	env.seedOrder(t, 1, 7, constants.OrderStatusShipping, false)

	_, _, err := svc.List(testCtx, repository.OrderListFilter{Status: "lost"})
	assertCode(t, err, CodeInvalidStatus)

	orders, total, err := svc.List(testCtx, repository.OrderListFilter{StoreID: 1, Status: constants.OrderStatusShipping, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(orders) != 1 {
		t.Fatalf("expected 1 shipping order, got total=%d len=%d", total, len(orders))
	}
}

func TestOrderQueryListForCustomerOnlySeesOwnOrders(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := NewOrderQueryService(env.db, env.orderRepo)
	mine := env.seedOrder(t, 1, 7, constants.OrderStatusProcessing, false)
	env.seedOrder(t, 2, 7, constants.OrderStatusShipping, false)
	env.seedOrder(t, 1, 8, constants.OrderStatusProcessing, false)

	orders, total, err := svc.ListForCustomer(testCtx, 7, "", 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(orders) != 2 {
		t.Fatalf("expected 2 own orders across stores, got total=%d len=%d", total, len(orders))
	}
	for _, order := range orders {
		if order.CustomerID != 7 {
			t.Fatalf("foreign order leaked: %+v", order)
		}
	}

	orders, total, err = svc.ListForCustomer(testCtx, 7, constants.OrderStatusProcessing, 1, 10)
	if err != nil || total != 1 || orders[0].ID != mine.ID {
		t.Fatalf("status filter failed: total=%d err=%v", total, err)
	}

	_, _, err = svc.ListForCustomer(testCtx, 7, "lost", 1, 10)
	assertCode(t, err, CodeInvalidStatus)
	_, _, err = svc.ListForCustomer(testCtx, 0, "", 1, 10)
	assertCode(t, err, CodeForbidden)
}

func TestBulkOperationQueryScopesByStore(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := NewBulkOperationQueryService(env.db, env.bulkRepo)
	env.seedOrder(t, 1, 7, constants.OrderStatusProcessing, false)
	opID := applyBulk(t, env, 1, constants.BulkActionProcessingToPending, 42)

	op, err := svc.Get(testCtx, opID, 1)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if len(op.Items) != 1 {
		t.Fatalf("expected items preloaded, got %d", len(op.Items))
	}
	_, err = svc.Get(testCtx, opID, 2)
	assertCode(t, err, CodeForbidden)
	_, err = svc.Get(testCtx, 404, 1)
	assertCode(t, err, CodeNotFound)

	ops, total, err := svc.List(testCtx, repository.BulkOperationListFilter{StoreID: 1, Page: 1, PageSize: 20})
	if err != nil || total != 1 || len(ops) != 1 {
		t.Fatalf("unexpected list result: total=%d len=%d err=%v", total, len(ops), err)
	}
}

func TestSystemLogServiceRecordAndList(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := NewSystemLogService(repository.NewSystemLogRepository(env.db))

	if err := svc.Record(SystemLogRecordInput{Action: "  "}); err != nil {
		t.Fatalf("blank action should be ignored: %v", err)
	}
	err := svc.Record(SystemLogRecordInput{
		ActorID:   42,
		ActorRole: constants.ActorRoleStaff,
		Action:    constants.SystemLogActionBulkApplied,
		StoreID:   1,
		RequestID: "req-1",
		Detail:    models.JSON{"operation_id": 5},
		CreatedAt: time.Now(),
	})
	if err != nil {
		t.Fatalf("record failed: %v", err)
	}

	logs, total, err := svc.List(testCtx, repository.SystemLogListFilter{StoreID: 1, Page: 1, PageSize: 20})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(logs) != 1 {
		t.Fatalf("expected 1 log, got total=%d len=%d", total, len(logs))
	}
	if logs[0].Action != constants.SystemLogActionBulkApplied || logs[0].RequestID != "req-1" {
		t.Fatalf("unexpected log: %+v", logs[0])
	}
}
