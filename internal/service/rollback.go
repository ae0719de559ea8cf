package service

import (
	"context"
	"errors"
	"time"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/metrics"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/repository"

	"gorm.io/gorm"
)

// RollbackResult 回滚结果
// SkippedOrderIDs 为当前状态已偏离审计记录而跳过的订单。
type RollbackResult struct {
	OperationID     uint   `json:"operation_id"`
	RevertedCount   int    `json:"reverted_count"`
	SkippedOrderIDs []uint `json:"skipped_order_ids"`
}

// RollbackService 批量流转回滚
type RollbackService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	bulkRepo  repository.BulkOperationRepository
	events    *EventPublisher
	metrics   *metrics.Recorder
}

// NewRollbackService 创建回滚服务
func NewRollbackService(db *gorm.DB, orderRepo repository.OrderRepository, bulkRepo repository.BulkOperationRepository, events *EventPublisher, recorder *metrics.Recorder) *RollbackService {
	return &RollbackService{
		db:        db,
		orderRepo: orderRepo,
		bulkRepo:  bulkRepo,
		events:    events,
		metrics:   recorder,
	}
}

func (s *RollbackService) reject(err *OrderError) error {
	s.metrics.RollbackRejected(string(err.Code))
	return err
}

// RollbackLast 回滚操作者在门店内最近一次未回滚的批量操作
func (s *RollbackService) RollbackLast(ctx context.Context, storeID, actorID uint) (*RollbackResult, error) {
	op, err := s.bulkRepo.WithTx(s.db.WithContext(ctx)).GetLatestActive(storeID, actorID)
	if err != nil {
		return nil, persistenceFailure(err, 0, 0)
	}
	if op == nil {
		return nil, s.reject(operationFailure(ErrNothingToRollBack, 0))
	}
	return s.reverse(ctx, op, actorID)
}

// RollbackByID 按 ID 回滚批量操作，actorID 记录为回滚人
func (s *RollbackService) RollbackByID(ctx context.Context, operationID, actorID uint) (*RollbackResult, error) {
	op, err := s.bulkRepo.WithTx(s.db.WithContext(ctx)).GetByID(operationID)
	if err != nil {
		return nil, persistenceFailure(err, 0, operationID)
	}
	if op == nil {
		return nil, s.reject(operationFailure(ErrBulkOperationNotFound, operationID))
	}
	if op.RolledBack {
		return nil, s.reject(operationFailure(ErrBulkAlreadyRolledBack, operationID))
	}
	return s.reverse(ctx, op, actorID)
}

// reverse 先抢占回滚标记，再逐单条件回退；状态已偏离的订单跳过
func (s *RollbackService) reverse(ctx context.Context, op *models.BulkOperation, actorID uint) (*RollbackResult, error) {
	result := &RollbackResult{OperationID: op.ID, SkippedOrderIDs: []uint{}}
	var changes []statusChange

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		bulkRepo := s.bulkRepo.WithTx(tx)

		claimed, err := bulkRepo.MarkRolledBack(op.ID, actorID, time.Now())
		if err != nil {
			return err
		}
		if claimed == 0 {
			return operationFailure(ErrBulkAlreadyRolledBack, op.ID)
		}

		items, err := bulkRepo.ListItems(op.ID)
		if err != nil {
			return err
		}
		for _, item := range items {
			affected, err := orderRepo.UpdateStatusIf(item.OrderID, item.NewStatus, item.OldStatus, nil)
			if err != nil {
				return err
			}
			if affected == 0 {
				result.SkippedOrderIDs = append(result.SkippedOrderIDs, item.OrderID)
				continue
			}
			result.RevertedCount++
			changes = append(changes, statusChange{
				OrderID: item.OrderID,
				StoreID: op.StoreID,
				From:    item.NewStatus,
				To:      item.OldStatus,
			})
		}
		return nil
	})
	if err != nil {
		var typed *OrderError
		if errors.As(err, &typed) {
			return nil, s.reject(typed)
		}
		logger.Warnw("bulk_rollback_failed",
			"request_id", RequestIDFromContext(ctx),
			"operation_id", op.ID,
			"actor_id", actorID,
			"error", err,
		)
		return nil, persistenceFailure(err, 0, op.ID)
	}

	s.metrics.RollbackCompleted(result.RevertedCount, len(result.SkippedOrderIDs))
	logger.Infow("bulk_rollback_completed",
		"request_id", RequestIDFromContext(ctx),
		"operation_id", op.ID,
		"store_id", op.StoreID,
		"actor_id", actorID,
		"reverted_count", result.RevertedCount,
		"skipped_count", len(result.SkippedOrderIDs),
	)

	action := constants.SystemLogActionBulkRolledBack
	if result.RevertedCount == 0 {
		action = constants.SystemLogActionBulkRollbackEmpty
	}
	s.events.publishStatusChanges(ctx, actorID, constants.ActorRoleStaff, op.ID, changes...)
	s.events.publishSystemLog(ctx, systemLogEntry{
		ActorID:   actorID,
		ActorRole: constants.ActorRoleStaff,
		Action:    action,
		StoreID:   op.StoreID,
		Detail: map[string]interface{}{
			"operation_id":      op.ID,
			"action_type":       op.ActionType,
			"reverted_count":    result.RevertedCount,
			"skipped_order_ids": result.SkippedOrderIDs,
		},
	})
	return result, nil
}
