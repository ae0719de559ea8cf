package models

import (
	"time"

	"github.com/orderflow-next/internal/constants"
)

// BulkOperation 批量流转操作头表
// 说明：一次批量流转对应一条头记录，明细逐单记录流转前后状态，用于回滚。
// RolledBack 只会从 false 变为 true，RolledBackBy / RolledBackAt 随之写入。
type BulkOperation struct {
	ID            uint                     `gorm:"primarykey" json:"id"`
	ActionType    constants.BulkActionType `gorm:"type:varchar(64);not null" json:"action_type"`
	StoreID       uint                     `gorm:"index:idx_bulk_ops_actor;not null" json:"store_id"`
	PerformedBy   uint                     `gorm:"index:idx_bulk_ops_actor;not null" json:"performed_by"`
	PerformedAt   time.Time                `gorm:"index;not null" json:"performed_at"`
	AffectedCount int                      `gorm:"not null;default:0" json:"affected_count"`
	RolledBack    bool                     `gorm:"index:idx_bulk_ops_actor;not null;default:false" json:"rolled_back"`
	RolledBackBy  *uint                    `json:"rolled_back_by,omitempty"`
	RolledBackAt  *time.Time               `json:"rolled_back_at,omitempty"`

	Items []BulkOperationItem `gorm:"foreignKey:BulkOperationID;constraint:OnDelete:CASCADE" json:"items,omitempty"` // 明细
}

// TableName 指定表名
func (BulkOperation) TableName() string {
	return "bulk_operations"
}

// BulkOperationItem 批量流转明细表
type BulkOperationItem struct {
	ID              uint                  `gorm:"primarykey" json:"id"`
	BulkOperationID uint                  `gorm:"uniqueIndex:idx_bulk_item_op_order;not null" json:"bulk_operation_id"`
	OrderID         uint                  `gorm:"uniqueIndex:idx_bulk_item_op_order;index;not null" json:"order_id"`
	OldStatus       constants.OrderStatus `gorm:"type:varchar(32);not null" json:"old_status"`
	NewStatus       constants.OrderStatus `gorm:"type:varchar(32);not null" json:"new_status"`
}

// TableName 指定表名
func (BulkOperationItem) TableName() string {
	return "bulk_operation_items"
}
