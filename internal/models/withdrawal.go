package models

import (
	"time"

	"gorm.io/gorm"
)

// Withdrawal 提现申请表（创建时同步冻结扣减余额）
type Withdrawal struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                            // 主键
	WithdrawalNo string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"withdrawal_no"`      // 提现单号
	UserID       uint           `gorm:"not null;index" json:"user_id"`                                   // 用户ID
	Amount       Money          `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`             // 提现金额
	Method       string         `gorm:"type:varchar(32);not null" json:"method"`                         // 收款方式
	Address      string         `gorm:"type:varchar(255);not null" json:"address"`                       // 收款账号/地址
	Status       string         `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"` // 状态
	ReviewNote   string         `gorm:"type:varchar(255)" json:"review_note"`                            // 审核备注
	RequestedAt  time.Time      `gorm:"index;not null" json:"requested_at"`                              // 申请时间
	ReviewedAt   *time.Time     `gorm:"index" json:"reviewed_at,omitempty"`                              // 审核时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                         // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                                  // 软删除时间

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 用户信息
}

// TableName 指定表名
func (Withdrawal) TableName() string {
	return "withdrawals"
}
