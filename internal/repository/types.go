package repository

import (
	"time"

	"github.com/orderflow-next/internal/constants"
)

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	StoreID     uint
	CustomerID  uint
	EmployeeID  uint
	Status      constants.OrderStatus
	OrderCode   string
	Keyword     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// BulkOperationListFilter 查询批量操作记录的过滤条件
type BulkOperationListFilter struct {
	Page        int
	PageSize    int
	StoreID     uint
	PerformedBy uint
	ActionType  constants.BulkActionType
	RolledBack  *bool
}

// SystemLogListFilter 查询系统日志的过滤条件
type SystemLogListFilter struct {
	Page        int
	PageSize    int
	ActorID     uint
	StoreID     uint
	Action      string
	OrderID     uint
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
