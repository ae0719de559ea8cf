package service

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/models"
)

func mustMoney(t *testing.T, raw string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(raw)
	if err != nil {
		t.Fatalf("parse money %s failed: %v", raw, err)
	}
	return m
}

func stockOf(t *testing.T, env *serviceTestEnv, storeID, productID uint) int {
	t.Helper()
	inv, err := env.inventoryRepo.Get(storeID, productID)
	if err != nil || inv == nil {
		t.Fatalf("load inventory failed: %v", err)
	}
	return inv.Quantity
}

func TestCreateOrderReservesStockAndWritesLines(t *testing.T) {
	env := setupServiceTestEnv(t)
	if err := env.inventoryRepo.Upsert(1, 100, 10); err != nil {
		t.Fatalf("seed inventory failed: %v", err)
	}
	if err := env.inventoryRepo.Upsert(1, 200, 5); err != nil {
		t.Fatalf("seed inventory failed: %v", err)
	}

	order, err := env.creator().CreateOrder(testCtx, CreateOrderInput{
		CustomerID: 7,
		StoreID:    1,
		Receiver:   " Alice ",
		Items: []CreateOrderItem{
			{ProductID: 100, Quantity: 2, UnitPrice: mustMoney(t, "12.50")},
			{ProductID: 200, Quantity: 1, UnitPrice: mustMoney(t, "3.00")},
			{ProductID: 100, Quantity: 1, UnitPrice: mustMoney(t, "12.50")},
		},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != constants.OrderStatusProcessing || order.Paid {
		t.Fatalf("unexpected initial state: %+v", order)
	}
	if order.TotalAmount.String() != "40.50" {
		t.Fatalf("expected total 40.50, got %s", order.TotalAmount.String())
	}
	if order.PaymentMethod != constants.PaymentMethodCOD || order.Receiver != "Alice" {
		t.Fatalf("unexpected normalized fields: %+v", order)
	}

	stored, err := env.orderRepo.GetByID(order.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if len(stored.Lines) != 2 {
		t.Fatalf("expected merged 2 lines, got %d", len(stored.Lines))
	}
	if got := stockOf(t, env, 1, 100); got != 7 {
		t.Fatalf("expected stock 7, got %d", got)
	}
	if got := stockOf(t, env, 1, 200); got != 4 {
		t.Fatalf("expected stock 4, got %d", got)
	}
	if len(env.queue.systemLogs) != 1 || env.queue.systemLogs[0].Action != constants.SystemLogActionOrderCreated {
		t.Fatalf("unexpected system logs: %+v", env.queue.systemLogs)
	}
}

func TestCreateOrderInsufficientStockLeavesNoTrace(t *testing.T) {
	env := setupServiceTestEnv(t)
	if err := env.inventoryRepo.Upsert(1, 100, 10); err != nil {
		t.Fatalf("seed inventory failed: %v", err)
	}
	if err := env.inventoryRepo.Upsert(1, 200, 3); err != nil {
		t.Fatalf("seed inventory failed: %v", err)
	}

	_, err := env.creator().CreateOrder(testCtx, CreateOrderInput{
		CustomerID: 7,
		StoreID:    1,
		Items: []CreateOrderItem{
			{ProductID: 100, Quantity: 2, UnitPrice: mustMoney(t, "1.00")},
			{ProductID: 200, Quantity: 5, UnitPrice: mustMoney(t, "1.00")},
		},
	})
	assertCode(t, err, CodeInsufficientStock)
	var typed *OrderError
	if !errors.As(err, &typed) || typed.ProductID != 200 {
		t.Fatalf("expected product 200 in error, got %v", err)
	}

	if total := env.count(t, &models.Order{}); total != 0 {
		t.Fatalf("expected no orders, got %d", total)
	}
	if total := env.count(t, &models.OrderLine{}); total != 0 {
		t.Fatalf("expected no lines, got %d", total)
	}
	if got := stockOf(t, env, 1, 100); got != 10 {
		t.Fatalf("reserved stock not rolled back: %d", got)
	}
	if got := stockOf(t, env, 1, 200); got != 3 {
		t.Fatalf("stock changed: %d", got)
	}
}

func TestCreateOrderWithoutInventoryRowFails(t *testing.T) {
	env := setupServiceTestEnv(t)
	_, err := env.creator().CreateOrder(testCtx, CreateOrderInput{
		CustomerID: 7,
		StoreID:    1,
		Items:      []CreateOrderItem{{ProductID: 300, Quantity: 1, UnitPrice: mustMoney(t, "1.00")}},
	})
	assertCode(t, err, CodeInsufficientStock)
}

func TestCreateOrderValidatesInput(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := env.creator()
	price := mustMoney(t, "2.00")

	cases := []struct {
		name  string
		input CreateOrderInput
	}{
		{"no items", CreateOrderInput{CustomerID: 7, StoreID: 1}},
		{"zero quantity", CreateOrderInput{CustomerID: 7, StoreID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 0, UnitPrice: price}}}},
		{"missing store", CreateOrderInput{CustomerID: 7, Items: []CreateOrderItem{{ProductID: 1, Quantity: 1, UnitPrice: price}}}},
		{"bad payment", CreateOrderInput{CustomerID: 7, StoreID: 1, PaymentMethod: "bitcoin", Items: []CreateOrderItem{{ProductID: 1, Quantity: 1, UnitPrice: price}}}},
		{"conflicting price", CreateOrderInput{CustomerID: 7, StoreID: 1, Items: []CreateOrderItem{
			{ProductID: 1, Quantity: 1, UnitPrice: price},
			{ProductID: 1, Quantity: 1, UnitPrice: mustMoney(t, "3.00")},
		}}},
		{"negative price", CreateOrderInput{CustomerID: 7, StoreID: 1, Items: []CreateOrderItem{{ProductID: 1, Quantity: 1, UnitPrice: mustMoney(t, "-1")}}}},
	}
	for _, tc := range cases {
		_, err := svc.CreateOrder(testCtx, tc.input)
		if CodeOf(err) != CodeInvalidOrderItem {
			t.Fatalf("%s: expected invalid_order_item, got %v", tc.name, err)
		}
	}
}

func TestGenerateOrderCodeFormat(t *testing.T) {
	now := time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)
	code := generateOrderCode(constants.OrderCodePrefix, now)
	if len(code) != 13 {
		t.Fatalf("expected 13 chars, got %q", code)
	}
	if !strings.HasPrefix(code, "DC260309") {
		t.Fatalf("unexpected prefix: %s", code)
	}
	if !regexp.MustCompile(`^DC\d{11}$`).MatchString(code) {
		t.Fatalf("unexpected code format: %s", code)
	}
}

func fixedOrderCodes(codes ...string) func(string, time.Time) string {
	calls := 0
	return func(string, time.Time) string {
		code := codes[len(codes)-1]
		if calls < len(codes) {
			code = codes[calls]
		}
		calls++
		return code
	}
}

func TestCreateOrderRetriesOnOrderCodeConflict(t *testing.T) {
	env := setupServiceTestEnv(t)
	if err := env.inventoryRepo.Upsert(1, 100, 10); err != nil {
		t.Fatalf("seed inventory failed: %v", err)
	}
	input := CreateOrderInput{
		CustomerID: 7,
		StoreID:    1,
		Items:      []CreateOrderItem{{ProductID: 100, Quantity: 2, UnitPrice: mustMoney(t, "5.00")}},
	}

	svc := env.creator()
	svc.newCode = fixedOrderCodes("DC26101900001")
	first, err := svc.CreateOrder(testCtx, input)
	if err != nil {
		t.Fatalf("first order failed: %v", err)
	}

	svc.newCode = fixedOrderCodes("DC26101900001", "DC26101900001", "DC26101900002")
	second, err := svc.CreateOrder(testCtx, input)
	if err != nil {
		t.Fatalf("conflicting code should be retried, got %v", err)
	}
	if second.OrderCode != "DC26101900002" || second.ID == first.ID {
		t.Fatalf("unexpected second order: id=%d code=%s", second.ID, second.OrderCode)
	}
	if got := stockOf(t, env, 1, 100); got != 6 {
		t.Fatalf("failed attempts must not reserve stock, got %d", got)
	}
	if total := env.count(t, &models.Order{}); total != 2 {
		t.Fatalf("expected 2 orders, got %d", total)
	}
	if lines := env.count(t, &models.OrderLine{}); lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestCreateOrderGivesUpAfterRepeatedConflicts(t *testing.T) {
	env := setupServiceTestEnv(t)
	if err := env.inventoryRepo.Upsert(1, 100, 10); err != nil {
		t.Fatalf("seed inventory failed: %v", err)
	}
	input := CreateOrderInput{
		CustomerID: 7,
		StoreID:    1,
		Items:      []CreateOrderItem{{ProductID: 100, Quantity: 1, UnitPrice: mustMoney(t, "5.00")}},
	}
	svc := env.creator()
	svc.newCode = fixedOrderCodes("DC26101900009")
	if _, err := svc.CreateOrder(testCtx, input); err != nil {
		t.Fatalf("first order failed: %v", err)
	}

	_, err := svc.CreateOrder(testCtx, input)
	assertCode(t, err, CodePersistenceFailure)
	if got := stockOf(t, env, 1, 100); got != 9 {
		t.Fatalf("stock should only reflect the first order, got %d", got)
	}
	if total := env.count(t, &models.Order{}); total != 1 {
		t.Fatalf("expected 1 order, got %d", total)
	}
}

func TestCreateOrderManySameDay(t *testing.T) {
	env := setupServiceTestEnv(t)
	if err := env.inventoryRepo.Upsert(1, 100, 5000); err != nil {
		t.Fatalf("seed inventory failed: %v", err)
	}
	svc := env.creator()
	for i := 0; i < 2000; i++ {
		_, err := svc.CreateOrder(testCtx, CreateOrderInput{
			CustomerID: uint(i + 1),
			StoreID:    1,
			Items:      []CreateOrderItem{{ProductID: 100, Quantity: 1, UnitPrice: mustMoney(t, "1.00")}},
		})
		if err != nil {
			t.Fatalf("order %d failed: %v", i, err)
		}
	}
	if got := stockOf(t, env, 1, 100); got != 3000 {
		t.Fatalf("expected stock 3000, got %d", got)
	}
}
