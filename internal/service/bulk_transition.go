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

// errBulkNothingMoved 候选订单在事务内全部被他人改动，回滚空的操作头
var errBulkNothingMoved = errors.New("bulk transition moved no orders")

// BulkApplyResult 批量流转结果，未产生变更时 OperationID 为 nil
type BulkApplyResult struct {
	AffectedCount int   `json:"affected_count"`
	OperationID   *uint `json:"operation_id"`
}

// BulkTransitionService 门店批量流转
type BulkTransitionService struct {
	db        *gorm.DB
	orderRepo repository.OrderRepository
	bulkRepo  repository.BulkOperationRepository
	events    *EventPublisher
	metrics   *metrics.Recorder
}

// NewBulkTransitionService 创建批量流转服务
func NewBulkTransitionService(db *gorm.DB, orderRepo repository.OrderRepository, bulkRepo repository.BulkOperationRepository, events *EventPublisher, recorder *metrics.Recorder) *BulkTransitionService {
	return &BulkTransitionService{
		db:        db,
		orderRepo: orderRepo,
		bulkRepo:  bulkRepo,
		events:    events,
		metrics:   recorder,
	}
}

// Apply 将门店内处于源状态的订单整体推进到目标状态，并写入审计记录
func (s *BulkTransitionService) Apply(ctx context.Context, storeID uint, action constants.BulkActionType, actorID uint) (*BulkApplyResult, error) {
	from, to, ok := action.Transition()
	if !ok {
		s.metrics.Rejected(string(CodeInvalidAction))
		return nil, &OrderError{Code: CodeInvalidAction, Err: ErrBulkActionInvalid}
	}

	candidates, err := s.orderRepo.WithTx(s.db.WithContext(ctx)).ListByStoreAndStatus(storeID, from)
	if err != nil {
		s.metrics.BulkFailed(action.String())
		return nil, persistenceFailure(err, 0, 0)
	}
	if len(candidates) == 0 {
		s.metrics.BulkApplied(action.String(), 0)
		return &BulkApplyResult{}, nil
	}

	var op *models.BulkOperation
	moved := make([]models.Order, 0, len(candidates))
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		bulkRepo := s.bulkRepo.WithTx(tx)

		op = &models.BulkOperation{
			ActionType:  action,
			StoreID:     storeID,
			PerformedBy: actorID,
			PerformedAt: time.Now(),
		}
		if err := bulkRepo.Create(op); err != nil {
			return err
		}

		items := make([]models.BulkOperationItem, 0, len(candidates))
		for _, order := range candidates {
			affected, err := orderRepo.UpdateStatusIf(order.ID, from, to, map[string]interface{}{
				"employee_id": actorID,
			})
			if err != nil {
				return err
			}
			if affected == 0 {
				continue
			}
			items = append(items, models.BulkOperationItem{
				BulkOperationID: op.ID,
				OrderID:         order.ID,
				OldStatus:       from,
				NewStatus:       to,
			})
			moved = append(moved, order)
		}
		if len(items) == 0 {
			return errBulkNothingMoved
		}
		if err := bulkRepo.CreateItems(items); err != nil {
			return err
		}
		op.AffectedCount = len(items)
		op.Items = items
		return bulkRepo.UpdateAffectedCount(op.ID, len(items))
	})
	if errors.Is(err, errBulkNothingMoved) {
		s.metrics.BulkApplied(action.String(), 0)
		return &BulkApplyResult{}, nil
	}
	if err != nil {
		s.metrics.BulkFailed(action.String())
		logger.Warnw("bulk_transition_failed",
			"request_id", RequestIDFromContext(ctx),
			"store_id", storeID,
			"action", action,
			"actor_id", actorID,
			"error", err,
		)
		return nil, persistenceFailure(err, 0, 0)
	}

	s.metrics.BulkApplied(action.String(), op.AffectedCount)
	logger.Infow("bulk_transition_applied",
		"request_id", RequestIDFromContext(ctx),
		"operation_id", op.ID,
		"store_id", storeID,
		"action", action,
		"actor_id", actorID,
		"affected_count", op.AffectedCount,
	)

	changes := make([]statusChange, 0, len(moved))
	orderIDs := make([]uint, 0, len(moved))
	for _, order := range moved {
		changes = append(changes, statusChange{OrderID: order.ID, StoreID: order.StoreID, From: from, To: to})
		orderIDs = append(orderIDs, order.ID)
	}
	s.events.publishStatusChanges(ctx, actorID, constants.ActorRoleStaff, op.ID, changes...)
	s.events.publishSystemLog(ctx, systemLogEntry{
		ActorID:   actorID,
		ActorRole: constants.ActorRoleStaff,
		Action:    constants.SystemLogActionBulkApplied,
		StoreID:   storeID,
		Detail: map[string]interface{}{
			"operation_id":   op.ID,
			"action_type":    action,
			"affected_count": op.AffectedCount,
			"order_ids":      orderIDs,
		},
	})

	operationID := op.ID
	return &BulkApplyResult{AffectedCount: op.AffectedCount, OperationID: &operationID}, nil
}
