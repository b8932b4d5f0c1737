package models

import "time"

// RevenueEvent 收益事件表（只追加，event_id 全局唯一保证幂等）
type RevenueEvent struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                       // 主键
	EventID        string    `gorm:"type:varchar(128);not null;uniqueIndex" json:"event_id"`     // 幂等键（外部转化ID，缺省为 click_id）
	PublisherID    uint      `gorm:"not null;index" json:"publisher_id"`                         // 受益发布者ID
	LockerID       uint      `gorm:"index" json:"locker_id"`                                     // Locker ID
	TaskID         uint      `gorm:"not null;index" json:"task_id"`                              // 任务ID
	ClickID        string    `gorm:"type:varchar(64);index" json:"click_id"`                     // 关联点击标识
	Amount         Money     `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`        // 入账金额（CPM/1000）
	ReportedAmount string    `gorm:"type:varchar(64)" json:"reported_amount"`                    // 广告主上报金额（仅审计，不入账）
	Source         string    `gorm:"type:varchar(20);not null;index" json:"source"`              // 事件来源（postback/manual）
	Country        string    `gorm:"type:varchar(8)" json:"country"`                             // 国家代码
	Device         string    `gorm:"type:varchar(20)" json:"device"`                             // 设备类型
	CreatedAt      time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 入账时间
}

// TableName 指定表名
func (RevenueEvent) TableName() string {
	return "revenue_events"
}
