package models

import "time"

// PostbackAudit 回调审计记录
// 全量留痕（含重复与无法关联的回调），供风控回查；上报金额仅记录不入账
type PostbackAudit struct {
	ID                   uint      `gorm:"primarykey" json:"id"`                                       // 主键
	EventID              string    `gorm:"type:varchar(128);index" json:"event_id"`                    // 幂等键（可为空：关联失败时未派生）
	ClickID              string    `gorm:"type:varchar(64);index" json:"click_id"`                     // 关联点击标识
	TaskID               uint      `gorm:"index" json:"task_id"`                                       // 任务ID
	PublisherID          uint      `gorm:"index" json:"publisher_id"`                                  // 发布者ID
	Correlation          string    `gorm:"type:varchar(1024)" json:"correlation"`                      // 原始关联参数
	ExternalConversionID string    `gorm:"type:varchar(128)" json:"external_conversion_id"`            // 广告主转化ID
	ReportedAmount       string    `gorm:"type:varchar(64)" json:"reported_amount"`                    // 广告主上报金额（未采信）
	Result               string    `gorm:"type:varchar(32);not null;index" json:"result"`              // 处理结果
	Reason               string    `gorm:"type:varchar(255)" json:"reason"`                            // 失败原因
	ClientIP             string    `gorm:"type:varchar(64)" json:"client_ip"`                          // 来源IP
	CreatedAt            time.Time `gorm:"index;not null;default:CURRENT_TIMESTAMP" json:"created_at"` // 创建时间
}

// TableName 指定表名
func (PostbackAudit) TableName() string {
	return "postback_audits"
}
