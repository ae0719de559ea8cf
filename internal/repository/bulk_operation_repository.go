package repository

import (
	"errors"
	"time"

	"github.com/orderflow-next/internal/models"

	"gorm.io/gorm"
)

// BulkOperationRepository 批量操作审计数据访问接口
type BulkOperationRepository interface {
	Create(op *models.BulkOperation) error
	CreateItems(items []models.BulkOperationItem) error
	UpdateAffectedCount(id uint, count int) error
	GetByID(id uint) (*models.BulkOperation, error)
	GetLatestActive(storeID, actorID uint) (*models.BulkOperation, error)
	ListItems(operationID uint) ([]models.BulkOperationItem, error)
	MarkRolledBack(operationID, actorID uint, at time.Time) (int64, error)
	List(filter BulkOperationListFilter) ([]models.BulkOperation, int64, error)
	WithTx(tx *gorm.DB) *GormBulkOperationRepository
}

// GormBulkOperationRepository GORM 实现
type GormBulkOperationRepository struct {
	db *gorm.DB
}

// NewBulkOperationRepository 创建批量操作仓库
func NewBulkOperationRepository(db *gorm.DB) *GormBulkOperationRepository {
	return &GormBulkOperationRepository{db: db}
}

// WithTx 绑定事务
func (r *GormBulkOperationRepository) WithTx(tx *gorm.DB) *GormBulkOperationRepository {
	if tx == nil {
		return r
	}
	return &GormBulkOperationRepository{db: tx}
}

// Create 写入批量操作头
func (r *GormBulkOperationRepository) Create(op *models.BulkOperation) error {
	if op == nil {
		return errors.New("bulk operation is nil")
	}
	return r.db.Omit("Items").Create(op).Error
}

// CreateItems 写入批量操作明细
func (r *GormBulkOperationRepository) CreateItems(items []models.BulkOperationItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// UpdateAffectedCount 回填影响订单数
func (r *GormBulkOperationRepository) UpdateAffectedCount(id uint, count int) error {
	return r.db.Model(&models.BulkOperation{}).
		Where("id = ?", id).
		Update("affected_count", count).Error
}

// GetByID 获取批量操作（含明细）
func (r *GormBulkOperationRepository) GetByID(id uint) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if err := r.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("id asc")
	}).First(&op, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

// GetLatestActive 获取员工在门店内最近一次未回滚的批量操作
func (r *GormBulkOperationRepository) GetLatestActive(storeID, actorID uint) (*models.BulkOperation, error) {
	var op models.BulkOperation
	if err := r.db.
		Where("store_id = ? AND performed_by = ? AND rolled_back = ?", storeID, actorID, false).
		Order("performed_at desc").
		Order("id desc").
		First(&op).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &op, nil
}

// ListItems 获取批量操作明细
func (r *GormBulkOperationRepository) ListItems(operationID uint) ([]models.BulkOperationItem, error) {
	var items []models.BulkOperationItem
	if err := r.db.Where("bulk_operation_id = ?", operationID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRolledBack 标记已回滚，仅在未回滚时生效，返回影响行数
func (r *GormBulkOperationRepository) MarkRolledBack(operationID, actorID uint, at time.Time) (int64, error) {
	result := r.db.Model(&models.BulkOperation{}).
		Where("id = ? AND rolled_back = ?", operationID, false).
		Updates(map[string]interface{}{
			"rolled_back":    true,
			"rolled_back_by": actorID,
			"rolled_back_at": at,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// List 批量操作记录列表
func (r *GormBulkOperationRepository) List(filter BulkOperationListFilter) ([]models.BulkOperation, int64, error) {
	var ops []models.BulkOperation
	query := r.db.Model(&models.BulkOperation{})
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if filter.PerformedBy != 0 {
		query = query.Where("performed_by = ?", filter.PerformedBy)
	}
	if filter.ActionType != "" {
		query = query.Where("action_type = ?", filter.ActionType)
	}
	if filter.RolledBack != nil {
		query = query.Where("rolled_back = ?", *filter.RolledBack)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)
	if err := query.Order("performed_at desc").Order("id desc").Find(&ops).Error; err != nil {
		return nil, 0, err
	}
	return ops, total, nil
}
