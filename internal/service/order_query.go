package service

import (
	"context"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/repository"

	"gorm.io/gorm"
)

// OrderQueryService 订单查询
type OrderQueryService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
}

// NewOrderQueryService 创建订单查询服务
func NewOrderQueryService(db *gorm.DB, orderRepo repository.OrderRepository) *OrderQueryService {
	return &OrderQueryService{db: db, orderRepo: orderRepo}
}

func (s *OrderQueryService) get(ctx context.Context, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.WithTx(s.db.WithContext(ctx)).GetByID(orderID)
	if err != nil {
		return nil, persistenceFailure(err, orderID, 0)
	}
	if order == nil {
		return nil, orderFailure(ErrOrderNotFound, orderID)
	}
	return order, nil
}

// GetForCustomer 顾客查看自己的订单
func (s *OrderQueryService) GetForCustomer(ctx context.Context, orderID, customerID uint) (*models.Order, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.OwnedBy(customerID) {
		return nil, orderFailure(ErrOrderForbidden, orderID)
	}
	return order, nil
}

// GetForStaff 员工查看本门店订单
func (s *OrderQueryService) GetForStaff(ctx context.Context, orderID, storeID uint) (*models.Order, error) {
	order, err := s.get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if storeID == 0 || order.StoreID != storeID {
		return nil, orderFailure(ErrOrderForbidden, orderID)
	}
	return order, nil
}

// List 订单列表
func (s *OrderQueryService) List(ctx context.Context, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, orderFailure(ErrOrderStatusInvalid, 0)
	}
	orders, total, err := s.orderRepo.WithTx(s.db.WithContext(ctx)).ListAdmin(filter)
	if err != nil {
		return nil, 0, persistenceFailure(err, 0, 0)
	}
	return orders, total, nil
}

// ListForCustomer 顾客自己的订单列表，只按状态与分页过滤
func (s *OrderQueryService) ListForCustomer(ctx context.Context, customerID uint, status constants.OrderStatus, page, pageSize int) ([]models.Order, int64, error) {
	if customerID == 0 {
		return nil, 0, orderFailure(ErrOrderForbidden, 0)
	}
	return s.List(ctx, repository.OrderListFilter{
		Page:       page,
		PageSize:   pageSize,
		CustomerID: customerID,
		Status:     status,
	})
}
