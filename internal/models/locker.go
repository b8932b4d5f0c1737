package models

import (
	"time"

	"gorm.io/gorm"
)

// Locker 发布者内容锁页面表
type Locker struct {
	ID          uint           `gorm:"primarykey" json:"id"`                                           // 主键
	PublisherID uint           `gorm:"not null;index" json:"publisher_id"`                             // 所属发布者ID
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`                        // 页面标题
	Status      string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"` // 状态
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt   time.Time      `gorm:"index" json:"updated_at"`                                        // 更新时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	Publisher User `gorm:"foreignKey:PublisherID" json:"publisher,omitempty"` // 所属发布者
}

// TableName 指定表名
func (Locker) TableName() string {
	return "lockers"
}
