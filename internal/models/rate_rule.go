package models

import (
	"time"
)

// RateRule 设备×国家×任务维度的 CPM 规则表
// 由管理端批量上传维护（device_country 复合键），解析后按精确维度落库
type RateRule struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                                          // 主键
	Device    string    `gorm:"type:varchar(20);not null;index:idx_rate_rule_unique,unique" json:"device"`     // 设备类型
	Country   string    `gorm:"type:varchar(8);not null;index:idx_rate_rule_unique,unique" json:"country"`     // 国家代码
	TaskID    uint      `gorm:"not null;index;index:idx_rate_rule_unique,unique" json:"task_id"`               // 任务ID
	CPM       Money     `gorm:"type:decimal(20,4);not null;default:0" json:"cpm"`                              // 每千次转化单价
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                                       // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                                                       // 更新时间
}

// TableName 指定表名
func (RateRule) TableName() string {
	return "rate_rules"
}
