package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/orderflow-next/internal/models"

	"gorm.io/gorm"
)

// SystemLogRepository 系统日志数据访问接口
type SystemLogRepository interface {
	Create(log *models.SystemLog) error
	List(filter SystemLogListFilter) ([]models.SystemLog, int64, error)
}

// GormSystemLogRepository GORM 实现
type GormSystemLogRepository struct {
	db *gorm.DB
}

// NewSystemLogRepository 创建系统日志仓库
func NewSystemLogRepository(db *gorm.DB) *GormSystemLogRepository {
	return &GormSystemLogRepository{db: db}
}

// Create 写入系统日志
func (r *GormSystemLogRepository) Create(log *models.SystemLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 系统日志列表
func (r *GormSystemLogRepository) List(filter SystemLogListFilter) ([]models.SystemLog, int64, error) {
	query := r.db.Model(&models.SystemLog{})
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.StoreID != 0 {
		query = query.Where("store_id = ?", filter.StoreID)
	}
	if action := strings.TrimSpace(filter.Action); action != "" {
		query = query.Where("action = ?", action)
	}
	if filter.OrderID != 0 {
		expr := fmt.Sprintf("CAST(%s AS TEXT) = ?", jsonTextExpr(r.db, "detail_json", "order_id"))
		query = query.Where(expr, strconv.FormatUint(uint64(filter.OrderID), 10))
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

	var logs []models.SystemLog
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
