package service

import (
	"errors"
	"testing"

	"github.com/orderflow-next/internal/constants"
)

func TestCancelSucceedsOnlyForUnpaidEarlyStatuses(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := env.lifecycle()

	for _, status := range constants.OrderStatuses {
		for _, paid := range []bool{false, true} {
			order := env.seedOrder(t, 1, 7, status, paid)
			before := env.reload(t, order.ID)

			_, err := svc.Cancel(testCtx, order.ID, 7)
			after := env.reload(t, order.ID)

			shouldSucceed := (status == constants.OrderStatusProcessing || status == constants.OrderStatusPendingDelivery) && !paid
			if shouldSucceed {
				if err != nil {
					t.Fatalf("cancel %s paid=%v should succeed: %v", status, paid, err)
				}
				if after.Status != constants.OrderStatusCancelled {
					t.Fatalf("cancel %s paid=%v left status %s", status, paid, after.Status)
				}
				continue
			}
			if err == nil {
				t.Fatalf("cancel %s paid=%v should fail", status, paid)
			}
			if !sameOrderRow(before, after) {
				t.Fatalf("failed cancel mutated order: before=%+v after=%+v", before, after)
			}
			wantCode := CodeIllegalTransition
			if paid && status.CustomerCancellable() {
				wantCode = CodeAlreadyPaid
			}
			assertCode(t, err, wantCode)
		}
	}
}

func TestCancelRejectsMissingOrForeignOrder(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := env.lifecycle()
	order := env.seedOrder(t, 1, 7, constants.OrderStatusProcessing, false)

	_, err := svc.Cancel(testCtx, order.ID, 8)
	assertCode(t, err, CodeForbidden)
	if !errors.Is(err, ErrOrderForbidden) {
		t.Fatalf("expected ErrOrderForbidden, got %v", err)
	}

	_, err = svc.Cancel(testCtx, 99999, 7)
	assertCode(t, err, CodeNotFound)

	if got := env.reload(t, order.ID).Status; got != constants.OrderStatusProcessing {
		t.Fatalf("order should stay processing, got %s", got)
	}
	if len(env.queue.statusEvents) != 0 || len(env.queue.systemLogs) != 0 {
		t.Fatalf("rejected cancel must not publish events")
	}
}

func TestCancelPublishesEvents(t *testing.T) {
	env := setupServiceTestEnv(t)
	order := env.seedOrder(t, 3, 7, constants.OrderStatusPendingDelivery, false)

	if _, err := env.lifecycle().Cancel(testCtx, order.ID, 7); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if len(env.queue.statusEvents) != 1 {
		t.Fatalf("expected 1 status event, got %d", len(env.queue.statusEvents))
	}
	event := env.queue.statusEvents[0]
	if event.FromStatus != constants.OrderStatusPendingDelivery || event.ToStatus != constants.OrderStatusCancelled || event.StoreID != 3 {
		t.Fatalf("unexpected event: %+v", event)
	}
	if len(env.queue.systemLogs) != 1 || env.queue.systemLogs[0].Action != constants.SystemLogActionOrderCancelled {
		t.Fatalf("unexpected system logs: %+v", env.queue.systemLogs)
	}
}

func TestEnqueueFailureDoesNotFailCancel(t *testing.T) {
	env := setupServiceTestEnv(t)
	env.queue.err = errors.New("redis down")
	order := env.seedOrder(t, 1, 7, constants.OrderStatusProcessing, false)

	if _, err := env.lifecycle().Cancel(testCtx, order.ID, 7); err != nil {
		t.Fatalf("cancel should succeed despite enqueue failure: %v", err)
	}
	if got := env.reload(t, order.ID).Status; got != constants.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", got)
	}
}

func TestConfirmReceipt(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := env.lifecycle()

	shipping := env.seedOrder(t, 1, 7, constants.OrderStatusShipping, false)
	updated, err := svc.ConfirmReceipt(testCtx, shipping.ID, 7)
	if err != nil {
		t.Fatalf("confirm receipt failed: %v", err)
	}
	if updated.Status != constants.OrderStatusDelivered || !updated.Paid {
		t.Fatalf("unexpected returned order: %+v", updated)
	}
	stored := env.reload(t, shipping.ID)
	if stored.Status != constants.OrderStatusDelivered || !stored.Paid {
		t.Fatalf("unexpected stored order: %+v", stored)
	}

	processing := env.seedOrder(t, 1, 7, constants.OrderStatusProcessing, false)
	_, err = svc.ConfirmReceipt(testCtx, processing.ID, 7)
	assertCode(t, err, CodeIllegalTransition)
	if stored := env.reload(t, processing.ID); stored.Paid || stored.Status != constants.OrderStatusProcessing {
		t.Fatalf("failed confirm mutated order: %+v", stored)
	}

	_, err = svc.ConfirmReceipt(testCtx, shipping.ID, 8)
	assertCode(t, err, CodeForbidden)
}

func TestStaffSetStatus(t *testing.T) {
	env := setupServiceTestEnv(t)
	svc := env.lifecycle()

	delivered := env.seedOrder(t, 1, 7, constants.OrderStatusDelivered, true)
	updated, err := svc.StaffSetStatus(testCtx, delivered.ID, constants.OrderStatusProcessing, 42)
	if err != nil {
		t.Fatalf("staff set status should allow any move from non-cancelled: %v", err)
	}
	if updated.EmployeeID != 42 {
		t.Fatalf("expected employee 42, got %d", updated.EmployeeID)
	}
	stored := env.reload(t, delivered.ID)
	if stored.Status != constants.OrderStatusProcessing || stored.EmployeeID != 42 || !stored.Paid {
		t.Fatalf("unexpected stored order: %+v", stored)
	}

	cancelled := env.seedOrder(t, 1, 7, constants.OrderStatusCancelled, false)
	before := env.reload(t, cancelled.ID)
	_, err = svc.StaffSetStatus(testCtx, cancelled.ID, constants.OrderStatusShipping, 42)
	assertCode(t, err, CodeIllegalTransition)
	if !sameOrderRow(before, env.reload(t, cancelled.ID)) {
		t.Fatalf("cancelled order must stay unchanged")
	}

	_, err = svc.StaffSetStatus(testCtx, delivered.ID, constants.OrderStatus("lost"), 42)
	assertCode(t, err, CodeInvalidStatus)

	_, err = svc.StaffSetStatus(testCtx, 99999, constants.OrderStatusShipping, 42)
	assertCode(t, err, CodeNotFound)

	toCancel := env.seedOrder(t, 1, 7, constants.OrderStatusShipping, false)
	if _, err := svc.StaffSetStatus(testCtx, toCancel.ID, constants.OrderStatusCancelled, 42); err != nil {
		t.Fatalf("staff may cancel a shipping order: %v", err)
	}
}
