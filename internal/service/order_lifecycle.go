package service

import (
	"context"
	"errors"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/metrics"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/repository"

	"gorm.io/gorm"
)

// OrderLifecycleService 单笔订单状态机（顾客取消 / 确认收货，员工改状态）
type OrderLifecycleService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	events    *EventPublisher
	metrics   *metrics.Recorder
}

// NewOrderLifecycleService 创建订单状态机服务
func NewOrderLifecycleService(db *gorm.DB, orderRepo repository.OrderRepository, events *EventPublisher, recorder *metrics.Recorder) *OrderLifecycleService {
	return &OrderLifecycleService{
		db:        db,
		orderRepo: orderRepo,
		events:    events,
		metrics:   recorder,
	}
}

func (s *OrderLifecycleService) repo(ctx context.Context) repository.OrderRepository {
	return s.orderRepo.WithTx(s.db.WithContext(ctx))
}

func (s *OrderLifecycleService) reject(err *OrderError) error {
	s.metrics.Rejected(string(err.Code))
	return err
}

func (s *OrderLifecycleService) loadOwned(ctx context.Context, orderID, customerID uint) (*models.Order, error) {
	order, err := s.repo(ctx).GetByID(orderID)
	if err != nil {
		return nil, persistenceFailure(err, orderID, 0)
	}
	if order == nil {
		return nil, s.reject(orderFailure(ErrOrderNotFound, orderID))
	}
	if !order.OwnedBy(customerID) {
		return nil, s.reject(orderFailure(ErrOrderForbidden, orderID))
	}
	return order, nil
}

// Cancel 顾客取消订单：仅处理中 / 待发货且未支付的订单可取消
func (s *OrderLifecycleService) Cancel(ctx context.Context, orderID, customerID uint) (*models.Order, error) {
	order, err := s.loadOwned(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if !order.Status.CustomerCancellable() {
		return nil, s.reject(orderFailure(ErrOrderIllegalTransition, orderID))
	}
	if order.Paid {
		return nil, s.reject(orderFailure(ErrOrderAlreadyPaid, orderID))
	}

	from := order.Status
	affected, err := s.repo(ctx).CancelIfUnpaid(order.ID, from)
	if err != nil {
		return nil, persistenceFailure(err, orderID, 0)
	}
	if affected == 0 {
		// 校验后被并发修改，按最新数据给出原因
		latest, reloadErr := s.repo(ctx).GetByID(order.ID)
		if reloadErr == nil && latest != nil && latest.Paid && latest.Status.CustomerCancellable() {
			return nil, s.reject(orderFailure(ErrOrderAlreadyPaid, orderID))
		}
		return nil, s.reject(orderFailure(ErrOrderIllegalTransition, orderID))
	}

	order.Status = constants.OrderStatusCancelled
	s.afterTransition(ctx, order, from, customerID, constants.ActorRoleCustomer, constants.SystemLogActionOrderCancelled)
	return order, nil
}

// ConfirmReceipt 顾客确认收货：配送中 → 已送达，同时视为已支付
func (s *OrderLifecycleService) ConfirmReceipt(ctx context.Context, orderID, customerID uint) (*models.Order, error) {
	order, err := s.loadOwned(ctx, orderID, customerID)
	if err != nil {
		return nil, err
	}
	if order.Status != constants.OrderStatusShipping {
		return nil, s.reject(orderFailure(ErrOrderIllegalTransition, orderID))
	}

	affected, err := s.repo(ctx).UpdateStatusIf(order.ID, constants.OrderStatusShipping, constants.OrderStatusDelivered, map[string]interface{}{
		"paid": true,
	})
	if err != nil {
		return nil, persistenceFailure(err, orderID, 0)
	}
	if affected == 0 {
		return nil, s.reject(orderFailure(ErrOrderIllegalTransition, orderID))
	}

	order.Status = constants.OrderStatusDelivered
	order.Paid = true
	s.afterTransition(ctx, order, constants.OrderStatusShipping, customerID, constants.ActorRoleCustomer, constants.SystemLogActionOrderReceived)
	return order, nil
}

// StaffSetStatus 员工直接设置订单状态
// 只拦截已取消订单，其余状态之间不做相邻校验；处理员工改为当前操作者。
func (s *OrderLifecycleService) StaffSetStatus(ctx context.Context, orderID uint, newStatus constants.OrderStatus, employeeID uint) (*models.Order, error) {
	if !newStatus.Valid() {
		return nil, s.reject(orderFailure(ErrOrderStatusInvalid, orderID))
	}
	order, err := s.repo(ctx).GetByID(orderID)
	if err != nil {
		return nil, persistenceFailure(err, orderID, 0)
	}
	if order == nil {
		return nil, s.reject(orderFailure(ErrOrderNotFound, orderID))
	}
	if order.Status == constants.OrderStatusCancelled {
		return nil, s.reject(orderFailure(ErrOrderIllegalTransition, orderID))
	}

	from := order.Status
	affected, err := s.repo(ctx).UpdateStatusIf(order.ID, from, newStatus, map[string]interface{}{
		"employee_id": employeeID,
	})
	if err != nil {
		return nil, persistenceFailure(err, orderID, 0)
	}
	if affected == 0 {
		return nil, s.reject(orderFailure(ErrOrderIllegalTransition, orderID))
	}

	order.Status = newStatus
	order.EmployeeID = employeeID
	s.afterTransition(ctx, order, from, employeeID, constants.ActorRoleStaff, constants.SystemLogActionStaffStatusSet)
	return order, nil
}

func (s *OrderLifecycleService) afterTransition(ctx context.Context, order *models.Order, from constants.OrderStatus, actorID uint, actorRole, action string) {
	s.metrics.Transition(actorRole, order.Status.String())
	logger.Infow("order_status_transitioned",
		"request_id", RequestIDFromContext(ctx),
		"order_id", order.ID,
		"from_status", from,
		"to_status", order.Status,
		"actor_id", actorID,
		"actor_role", actorRole,
	)
	s.events.publishStatusChanges(ctx, actorID, actorRole, 0, statusChange{
		OrderID: order.ID,
		StoreID: order.StoreID,
		From:    from,
		To:      order.Status,
	})
	s.events.publishSystemLog(ctx, systemLogEntry{
		ActorID:   actorID,
		ActorRole: actorRole,
		Action:    action,
		StoreID:   order.StoreID,
		Detail: map[string]interface{}{
			"order_id":    order.ID,
			"order_code":  order.OrderCode,
			"from_status": from,
			"to_status":   order.Status,
		},
	})
}

// IsOrderError 判断是否为订单核心的类型化失败
func IsOrderError(err error) bool {
	var typed *OrderError
	return errors.As(err, &typed)
}
