package models

import (
	"time"

	"gorm.io/gorm"
)

// Referral 推荐关系表（每个被推荐用户至多一条，建立后不可改挂）
type Referral struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                            // 主键
	ReferrerID     uint           `gorm:"not null;index" json:"referrer_id"`                               // 推荐人用户ID
	ReferredID     uint           `gorm:"not null;uniqueIndex" json:"referred_id"`                         // 被推荐用户ID
	Status         string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`  // 状态
	CommissionRate Money          `gorm:"type:decimal(10,4);not null;default:0" json:"commission_rate"`    // 佣金比例（小数，如 0.1000 = 10%）
	TotalEarned    Money          `gorm:"type:decimal(20,4);not null;default:0" json:"total_earned"`       // 累计佣金
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	Referrer User `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"` // 推荐人
	Referred User `gorm:"foreignKey:ReferredID" json:"referred,omitempty"` // 被推荐人
}

// TableName 指定表名
func (Referral) TableName() string {
	return "referrals"
}
