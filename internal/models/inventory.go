package models

import "time"

// Inventory 门店库存表
type Inventory struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	StoreID   uint      `gorm:"uniqueIndex:idx_inventory_store_product;not null" json:"store_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_inventory_store_product;not null" json:"product_id"`
	Quantity  int       `gorm:"not null;default:0" json:"quantity"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Inventory) TableName() string {
	return "inventories"
}
