package models

import "time"

// Click 访客点击记录（创建后不可变更）
type Click struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                       // 主键
	ClickID        string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"click_id"`      // 点击唯一标识（兼作回调关联值）
	TaskID         uint      `gorm:"not null;index" json:"task_id"`                              // 任务ID
	LockerID       uint      `gorm:"not null;index" json:"locker_id"`                            // Locker ID
	PublisherID    uint      `gorm:"not null;index" json:"publisher_id"`                         // 发布者ID
	VisitorID      string    `gorm:"type:varchar(128);index" json:"visitor_id"`                  // 访客标识（可选）
	Device         string    `gorm:"type:varchar(20);not null" json:"device"`                    // 设备类型
	Country        string    `gorm:"type:varchar(8);not null" json:"country"`                    // 国家代码（ISO 3166-1 alpha-2）
	DestinationURL string    `gorm:"type:varchar(2048)" json:"destination_url"`                  // 跳转地址
	ClientIP       string    `gorm:"type:varchar(64)" json:"client_ip"`                          // 客户端IP
	UserAgent      string    `gorm:"type:varchar(1024)" json:"user_agent"`                       // 客户端UA
	CreatedAt      time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 创建时间
}

// TableName 指定表名
func (Click) TableName() string {
	return "clicks"
}
