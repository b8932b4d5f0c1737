package models

import (
	"time"
)

// BalanceAccount 发布者余额账户表（物化余额，须可由流水重算对账）
type BalanceAccount struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                 // 主键
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`                  // 用户ID
	Balance   Money     `gorm:"type:decimal(20,4);not null;default:0" json:"balance"` // 当前余额
	CreatedAt time.Time `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                              // 更新时间

	User User `gorm:"foreignKey:UserID" json:"user,omitempty"` // 用户信息
}

// TableName 指定表名
func (BalanceAccount) TableName() string {
	return "balance_accounts"
}

// BalanceTransaction 余额流水表（只追加，reference 唯一保证幂等）
type BalanceTransaction struct {
	ID            uint      `gorm:"primarykey" json:"id"`                                        // 主键
	UserID        uint      `gorm:"not null;index" json:"user_id"`                               // 用户ID
	Type          string    `gorm:"type:varchar(32);not null;index" json:"type"`                 // 账变类型
	Direction     string    `gorm:"type:varchar(8);not null" json:"direction"`                   // 账变方向（in/out）
	Amount        Money     `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`         // 账变金额（非负）
	BalanceBefore Money     `gorm:"type:decimal(20,4);not null;default:0" json:"balance_before"` // 账变前余额
	BalanceAfter  Money     `gorm:"type:decimal(20,4);not null;default:0" json:"balance_after"`  // 账变后余额
	Reference     string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"reference"`     // 业务引用（幂等键）
	Remark        string    `gorm:"type:varchar(255)" json:"remark"`                             // 备注
	CreatedAt     time.Time `gorm:"index" json:"created_at"`                                     // 创建时间
}

// TableName 指定表名
func (BalanceTransaction) TableName() string {
	return "balance_transactions"
}
