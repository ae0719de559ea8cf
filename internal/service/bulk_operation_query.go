package service

import (
	"context"

	"github.com/orderflow-next/internal/cache"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/repository"

	"gorm.io/gorm"
)

// BulkOperationQueryService 批量操作历史查询
type BulkOperationQueryService struct {
	db       *gorm.DB
	bulkRepo repository.BulkOperationRepository
}

// NewBulkOperationQueryService 创建批量操作查询服务
func NewBulkOperationQueryService(db *gorm.DB, bulkRepo repository.BulkOperationRepository) *BulkOperationQueryService {
	return &BulkOperationQueryService{db: db, bulkRepo: bulkRepo}
}

// List 批量操作列表（不含明细）
func (s *BulkOperationQueryService) List(ctx context.Context, filter repository.BulkOperationListFilter) ([]models.BulkOperation, int64, error) {
	ops, total, err := s.bulkRepo.WithTx(s.db.WithContext(ctx)).List(filter)
	if err != nil {
		return nil, 0, persistenceFailure(err, 0, 0)
	}
	return ops, total, nil
}

// Get 获取门店内的批量操作及明细
// 已回滚的操作不再变化，详情写入缓存。
func (s *BulkOperationQueryService) Get(ctx context.Context, operationID, storeID uint) (*models.BulkOperation, error) {
	cached, err := cache.GetRolledBackOperation(ctx, operationID)
	if err != nil {
		logger.Debugw("bulk_operation_cache_get_failed", "operation_id", operationID, "error", err)
	} else if cached != nil {
		return s.scoped(cached, storeID)
	}

	op, err := s.bulkRepo.WithTx(s.db.WithContext(ctx)).GetByID(operationID)
	if err != nil {
		return nil, persistenceFailure(err, 0, operationID)
	}
	if op == nil {
		return nil, operationFailure(ErrBulkOperationNotFound, operationID)
	}
	if err := cache.SetRolledBackOperation(ctx, op); err != nil {
		logger.Debugw("bulk_operation_cache_set_failed", "operation_id", operationID, "error", err)
	}
	return s.scoped(op, storeID)
}

func (s *BulkOperationQueryService) scoped(op *models.BulkOperation, storeID uint) (*models.BulkOperation, error) {
	if storeID == 0 || op.StoreID != storeID {
		return nil, &OrderError{Code: CodeForbidden, OperationID: op.ID, Err: ErrOrderForbidden}
	}
	return op, nil
}
