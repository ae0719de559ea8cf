package models

import "time"

// SystemLog 系统操作日志
// 说明：记录顾客取消、员工改状态、批量流转与回滚等动作，由异步任务落库。
type SystemLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ActorID    uint      `gorm:"index;not null" json:"actor_id"`
	ActorRole  string    `gorm:"type:varchar(32);index;not null;default:''" json:"actor_role"`
	Action     string    `gorm:"type:varchar(100);index;not null" json:"action"`
	StoreID    uint      `gorm:"index;not null;default:0" json:"store_id"`
	RequestID  string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON JSON      `gorm:"type:json" json:"detail"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (SystemLog) TableName() string {
	return "system_logs"
}
