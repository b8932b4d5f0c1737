package models

import "time"

// ReferralCommission 推荐佣金记录
// (referral_id, revenue_event_id) 复合唯一，同一收益事件绝不重复出佣
type ReferralCommission struct {
	ID             uint      `gorm:"primarykey" json:"id"`                                                                 // 主键
	ReferralID     uint      `gorm:"not null;index;index:idx_referral_commission_unique,unique" json:"referral_id"`        // 推荐关系ID
	RevenueEventID uint      `gorm:"not null;index;index:idx_referral_commission_unique,unique" json:"revenue_event_id"`   // 触发收益事件ID
	ReferrerID     uint      `gorm:"not null;index" json:"referrer_id"`                                                    // 推荐人用户ID
	ReferredID     uint      `gorm:"not null;index" json:"referred_id"`                                                    // 被推荐用户ID
	BaseAmount     Money     `gorm:"type:decimal(20,4);not null;default:0" json:"base_amount"`                             // 佣金基数（触发事件金额）
	Rate           Money     `gorm:"type:decimal(10,4);not null;default:0" json:"rate"`                                    // 出佣时快照比例
	Amount         Money     `gorm:"type:decimal(20,4);not null;default:0" json:"amount"`                                  // 佣金金额
	CreatedAt      time.Time `gorm:"index" json:"created_at"`                                                              // 创建时间

	Referral     Referral     `gorm:"foreignKey:ReferralID" json:"referral,omitempty"`          // 推荐关系
	RevenueEvent RevenueEvent `gorm:"foreignKey:RevenueEventID" json:"revenue_event,omitempty"` // 触发事件
}

// TableName 指定表名
func (ReferralCommission) TableName() string {
	return "referral_commissions"
}
