package repository

import (
	"errors"
	"strings"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, lines []models.OrderLine) error
	GetByID(id uint) (*models.Order, error)
	ListByStoreAndStatus(storeID uint, status constants.OrderStatus) ([]models.Order, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatusIf(id uint, from, to constants.OrderStatus, updates map[string]interface{}) (int64, error)
	CancelIfUnpaid(id uint, from constants.OrderStatus) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单明细
func (r *GormOrderRepository) Create(order *models.Order, lines []models.OrderLine) error {
	if err := r.db.Omit("Lines").Create(order).Error; err != nil {
		return err
	}
	for i := range lines {
		lines[i].OrderID = order.ID
	}
	if len(lines) > 0 {
		if err := r.db.Create(&lines).Error; err != nil {
			return err
		}
	}
	order.Lines = lines
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Lines").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByStoreAndStatus 获取门店内指定状态的订单（按 ID 升序）
func (r *GormOrderRepository) ListByStoreAndStatus(storeID uint, status constants.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Model(&models.Order{}).
		Where("store_id = ? AND status = ?", storeID, status).
		Order("id asc").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// ListAdmin 订单列表（门店员工 / 顾客共用过滤）
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{})

	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.CustomerID != 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.EmployeeID != 0 {
		query = query.Where("employee_id = ?", filter.EmployeeID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if code := strings.TrimSpace(filter.OrderCode); code != "" {
		query = query.Where("order_code = ?", code)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildLikeCondition(r.db, []string{"order_code", "receiver", "phone"})
		query = query.Where(condition, repeatLikeArgs("%"+keyword+"%", argCount)...)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Preload("Lines").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatusIf 条件更新订单状态，仅当当前状态等于 from 时生效，返回影响行数
func (r *GormOrderRepository) UpdateStatusIf(id uint, from, to constants.OrderStatus, updates map[string]interface{}) (int64, error) {
	values := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		values[key] = value
	}
	values["status"] = to
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(values)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CancelIfUnpaid 取消未支付订单，状态或支付标记不符时影响行数为 0
func (r *GormOrderRepository) CancelIfUnpaid(id uint, from constants.OrderStatus) (int64, error) {
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ? AND paid = ?", id, from, false).
		Updates(map[string]interface{}{"status": constants.OrderStatusCancelled})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
