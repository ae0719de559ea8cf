package models

import "time"

// OrderLine 订单明细表
type OrderLine struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                    // 主键
	OrderID   uint      `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID uint      `gorm:"index;not null" json:"product_id"`                        // 商品ID
	Quantity  int       `gorm:"not null" json:"quantity"`                                // 数量
	UnitPrice Money     `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 单价
	CreatedAt time.Time `json:"created_at"`                                              // 创建时间
}

// TableName 指定表名
func (OrderLine) TableName() string {
	return "order_lines"
}
