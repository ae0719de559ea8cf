package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/orderflow-next/internal/models"
)

// RolledBackOperationTTL 已回滚批量操作详情的缓存时长
const RolledBackOperationTTL = 10 * time.Minute

func bulkOperationKey(operationID uint) string {
	return fmt.Sprintf("bulk_operation:%d", operationID)
}

// GetRolledBackOperation 读取已回滚批量操作（含明细），未命中返回 nil
func GetRolledBackOperation(ctx context.Context, operationID uint) (*models.BulkOperation, error) {
	var op models.BulkOperation
	hit, err := getJSON(ctx, bulkOperationKey(operationID), &op)
	if err != nil || !hit {
		return nil, err
	}
	return &op, nil
}

// SetRolledBackOperation 缓存已回滚的批量操作；未回滚的记录仍可能变化，不写入
func SetRolledBackOperation(ctx context.Context, op *models.BulkOperation) error {
	if op == nil || !op.RolledBack {
		return nil
	}
	return setJSON(ctx, bulkOperationKey(op.ID), op, RolledBackOperationTTL)
}
