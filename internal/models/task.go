package models

import (
	"time"

	"gorm.io/gorm"
)

// Task 广告任务（Offer）表
type Task struct {
	ID            uint           `gorm:"primarykey" json:"id"`                                 // 主键
	Title         string         `gorm:"type:varchar(255);not null" json:"title"`              // 任务名称
	AdvertiserURL string         `gorm:"type:varchar(1024);not null" json:"advertiser_url"`    // 广告主落地页模板
	Tier1CPM      Money          `gorm:"type:decimal(20,4);not null;default:0" json:"tier1_cpm"` // Tier1 国家 CPM
	Tier2CPM      Money          `gorm:"type:decimal(20,4);not null;default:0" json:"tier2_cpm"` // Tier2 国家 CPM
	Tier3CPM      Money          `gorm:"type:decimal(20,4);not null;default:0" json:"tier3_cpm"` // Tier3 国家 CPM
	Status        string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // 任务状态
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt     time.Time      `gorm:"index" json:"updated_at"`                              // 更新时间
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`                                       // 软删除时间
}

// TableName 指定表名
func (Task) TableName() string {
	return "tasks"
}
