package worker

import (
	"context"
	"encoding/json"

	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/provider"
	"github.com/orderflow-next/internal/queue"
	"github.com/orderflow-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderStatusChanged, c.handleOrderStatusChanged)
	mux.HandleFunc(queue.TaskSystemLogRecord, c.handleSystemLogRecord)
}

// handleOrderStatusChanged 订单状态变更事件：记录日志与指标，供下游订阅扩展
func (c *Consumer) handleOrderStatusChanged(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_changed_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_changed_unmarshal_failed", "error", err)
		c.Metrics.TaskHandled(task.Type(), err)
		return err
	}
	if payload.OrderID == 0 || !payload.ToStatus.Valid() {
		logger.Debugw("worker_order_status_changed_skip_invalid_payload", "order_id", payload.OrderID, "to_status", payload.ToStatus)
		return nil
	}
	logger.Infow("worker_order_status_changed",
		"order_id", payload.OrderID,
		"store_id", payload.StoreID,
		"from_status", payload.FromStatus,
		"to_status", payload.ToStatus,
		"actor_id", payload.ActorID,
		"actor_role", payload.ActorRole,
		"operation_id", payload.OperationID,
		"occurred_at", payload.OccurredAt,
	)
	c.Metrics.TaskHandled(task.Type(), nil)
	return nil
}

// handleSystemLogRecord 系统日志异步落库
func (c *Consumer) handleSystemLogRecord(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_system_log_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.SystemLogPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_system_log_unmarshal_failed", "error", err)
		c.Metrics.TaskHandled(task.Type(), err)
		return err
	}
	if c.SystemLogService == nil {
		logger.Warnw("worker_system_log_skip_service_nil", "action", payload.Action)
		return nil
	}
	err := c.SystemLogService.Record(service.SystemLogRecordInput{
		ActorID:   payload.ActorID,
		ActorRole: payload.ActorRole,
		Action:    payload.Action,
		StoreID:   payload.StoreID,
		RequestID: payload.RequestID,
		Detail:    models.JSON(payload.Detail),
		CreatedAt: payload.CreatedAt,
	})
	c.Metrics.TaskHandled(task.Type(), err)
	if err != nil {
		logger.Warnw("worker_system_log_record_failed",
			"action", payload.Action,
			"actor_id", payload.ActorID,
			"request_id", payload.RequestID,
			"error", err,
		)
		return err
	}
	return nil
}
