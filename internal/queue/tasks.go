package queue

import (
	"encoding/json"
	"time"

	"github.com/orderflow-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderStatusChanged 订单状态变更事件
	TaskOrderStatusChanged = constants.TaskOrderStatusChanged
	// TaskSystemLogRecord 系统日志落库任务
	TaskSystemLogRecord = constants.TaskSystemLogRecord
)

// OrderStatusChangedPayload 订单状态变更事件载荷
type OrderStatusChangedPayload struct {
	OrderID     uint                  `json:"order_id"`
	StoreID     uint                  `json:"store_id"`
	FromStatus  constants.OrderStatus `json:"from_status"`
	ToStatus    constants.OrderStatus `json:"to_status"`
	ActorID     uint                  `json:"actor_id"`
	ActorRole   string                `json:"actor_role"`
	OperationID uint                  `json:"operation_id,omitempty"` // 批量操作 / 回滚触发时携带
	OccurredAt  time.Time             `json:"occurred_at"`
}

// SystemLogPayload 系统日志任务载荷
type SystemLogPayload struct {
	ActorID   uint                   `json:"actor_id"`
	ActorRole string                 `json:"actor_role"`
	Action    string                 `json:"action"`
	StoreID   uint                   `json:"store_id"`
	RequestID string                 `json:"request_id,omitempty"`
	Detail    map[string]interface{} `json:"detail,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NewOrderStatusChangedTask 创建订单状态变更任务
func NewOrderStatusChangedTask(payload OrderStatusChangedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusChanged, body), nil
}

// NewSystemLogTask 创建系统日志任务
func NewSystemLogTask(payload SystemLogPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskSystemLogRecord, body), nil
}
