package constants

// OrderStatus 订单状态（封闭枚举）
type OrderStatus string

// 订单状态常量
const (
	OrderStatusProcessing      OrderStatus = "processing"
	OrderStatusPendingDelivery OrderStatus = "pending_delivery"
	OrderStatusShipping        OrderStatus = "shipping"
	OrderStatusDelivered       OrderStatus = "delivered"
	OrderStatusCancelled       OrderStatus = "cancelled"
)

// OrderStatuses 全部订单状态（按生命周期顺序）
var OrderStatuses = []OrderStatus{
	OrderStatusProcessing,
	OrderStatusPendingDelivery,
	OrderStatusShipping,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Valid 判断状态是否属于封闭枚举
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusProcessing,
		OrderStatusPendingDelivery,
		OrderStatusShipping,
		OrderStatusDelivered,
		OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal 终态不允许任何后续流转
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CustomerCancellable 顾客可自行取消的状态
func (s OrderStatus) CustomerCancellable() bool {
	return s == OrderStatusProcessing || s == OrderStatusPendingDelivery
}

func (s OrderStatus) String() string {
	return string(s)
}

// BulkActionType 批量流转动作（封闭枚举）
type BulkActionType string

// 批量流转动作常量
const (
	BulkActionProcessingToPending BulkActionType = "processing_to_pending"
	BulkActionPendingToShipping   BulkActionType = "pending_to_shipping"
)

// BulkActionTypes 全部批量动作
var BulkActionTypes = []BulkActionType{
	BulkActionProcessingToPending,
	BulkActionPendingToShipping,
}

// Transition 返回批量动作对应的源状态与目标状态
func (a BulkActionType) Transition() (from OrderStatus, to OrderStatus, ok bool) {
	switch a {
	case BulkActionProcessingToPending:
		return OrderStatusProcessing, OrderStatusPendingDelivery, true
	case BulkActionPendingToShipping:
		return OrderStatusPendingDelivery, OrderStatusShipping, true
	}
	return "", "", false
}

func (a BulkActionType) String() string {
	return string(a)
}

// 操作者角色常量
const (
	ActorRoleStaff    = "staff"
	ActorRoleCustomer = "customer"
	ActorRoleSystem   = "system"
)

// 系统日志动作常量
const (
	SystemLogActionOrderCreated      = "order_created"
	SystemLogActionOrderCancelled    = "order_cancelled"
	SystemLogActionOrderReceived     = "order_receipt_confirmed"
	SystemLogActionStaffStatusSet    = "staff_status_set"
	SystemLogActionBulkApplied       = "bulk_applied"
	SystemLogActionBulkRolledBack    = "bulk_rolled_back"
	SystemLogActionBulkRollbackEmpty = "bulk_rollback_nothing_reverted"
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskOrderStatusChanged = "order:status_changed"
	TaskSystemLogRecord    = "system_log:record"
)

// 订单编号常量（总长 13 位：前缀 + yyMMdd + 5 位随机数）
const (
	OrderCodePrefix     = "DC"
	OrderCodeRandDigits = 5
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "of"
)

// 支付方式常量
const (
	PaymentMethodCOD      = "cod"
	PaymentMethodTransfer = "bank_transfer"
	PaymentMethodEWallet  = "e_wallet"
)
