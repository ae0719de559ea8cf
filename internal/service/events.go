package service

import (
	"context"
	"time"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/queue"

	"github.com/hibiken/asynq"
)

// taskEnqueuer 异步任务入队能力（queue.Client 实现）
type taskEnqueuer interface {
	EnqueueOrderStatusChanged(payload queue.OrderStatusChangedPayload, opts ...asynq.Option) error
	EnqueueSystemLog(payload queue.SystemLogPayload, opts ...asynq.Option) error
}

// EventPublisher 事务提交后的事件发布
// 入队失败只记录日志，不影响已提交的业务结果。
type EventPublisher struct {
	queue taskEnqueuer
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(client *queue.Client) *EventPublisher {
	if client == nil {
		return &EventPublisher{}
	}
	return &EventPublisher{queue: client}
}

// statusChange 一次订单状态变化
type statusChange struct {
	OrderID uint
	StoreID uint
	From    constants.OrderStatus
	To      constants.OrderStatus
}

// systemLogEntry 系统日志内容
type systemLogEntry struct {
	ActorID   uint
	ActorRole string
	Action    string
	StoreID   uint
	Detail    map[string]interface{}
}

func (p *EventPublisher) publishStatusChanges(ctx context.Context, actorID uint, actorRole string, operationID uint, changes ...statusChange) {
	if p == nil || p.queue == nil {
		return
	}
	now := time.Now()
	for _, change := range changes {
		err := p.queue.EnqueueOrderStatusChanged(queue.OrderStatusChangedPayload{
			OrderID:     change.OrderID,
			StoreID:     change.StoreID,
			FromStatus:  change.From,
			ToStatus:    change.To,
			ActorID:     actorID,
			ActorRole:   actorRole,
			OperationID: operationID,
			OccurredAt:  now,
		})
		if err != nil {
			logger.Warnw("order_status_event_enqueue_failed",
				"request_id", RequestIDFromContext(ctx),
				"order_id", change.OrderID,
				"to_status", change.To,
				"error", err,
			)
		}
	}
}

func (p *EventPublisher) publishSystemLog(ctx context.Context, entry systemLogEntry) {
	if p == nil || p.queue == nil {
		return
	}
	err := p.queue.EnqueueSystemLog(queue.SystemLogPayload{
		ActorID:   entry.ActorID,
		ActorRole: entry.ActorRole,
		Action:    entry.Action,
		StoreID:   entry.StoreID,
		RequestID: RequestIDFromContext(ctx),
		Detail:    entry.Detail,
		CreatedAt: time.Now(),
	})
	if err != nil {
		logger.Warnw("system_log_enqueue_failed",
			"request_id", RequestIDFromContext(ctx),
			"action", entry.Action,
			"actor_id", entry.ActorID,
			"error", err,
		)
	}
}
