package models

import (
	"time"

	"github.com/orderflow-next/internal/constants"
)

// Order 订单表
type Order struct {
	ID            uint                  `gorm:"primarykey" json:"id"`                                    // 主键
	OrderCode     string                `gorm:"type:varchar(13);uniqueIndex;not null" json:"order_code"` // 订单编号
	CustomerID    uint                  `gorm:"index;not null" json:"customer_id"`                       // 顾客ID
	StoreID       uint                  `gorm:"index:idx_orders_store_status;not null" json:"store_id"`  // 门店ID
	EmployeeID    uint                  `gorm:"index;not null;default:0" json:"employee_id"`             // 处理员工ID（0 表示未分配）
	Status        constants.OrderStatus `gorm:"type:varchar(32);index:idx_orders_store_status;not null" json:"status"`
	Paid          bool                  `gorm:"not null;default:false" json:"paid"`                         // 是否已支付
	TotalAmount   Money                 `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`  // 订单金额
	PaymentMethod string                `gorm:"type:varchar(32);not null;default:''" json:"payment_method"` // 支付方式
	Receiver      string                `gorm:"type:varchar(120)" json:"receiver,omitempty"`                // 收货人
	Phone         string                `gorm:"type:varchar(32)" json:"phone,omitempty"`                    // 联系电话
	Address       string                `gorm:"type:varchar(255)" json:"address,omitempty"`                 // 收货地址
	CreatedAt     time.Time             `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt     time.Time             `gorm:"index" json:"updated_at"`                                    // 更新时间

	Lines []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"` // 订单明细
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// OwnedBy 判断订单是否属于指定顾客
func (o *Order) OwnedBy(customerID uint) bool {
	return o != nil && customerID != 0 && o.CustomerID == customerID
}
