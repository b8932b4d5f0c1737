package queue

import (
	"encoding/json"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskPostbackAuditFlush 回调审计落库任务
	TaskPostbackAuditFlush = constants.TaskPostbackAuditFlush
	// TaskWithdrawalNotify 提现状态通知任务
	TaskWithdrawalNotify = constants.TaskWithdrawalNotify
)

// PostbackAuditPayload 回调审计任务载荷
type PostbackAuditPayload struct {
	EventID              string `json:"event_id"`
	ClickID              string `json:"click_id"`
	TaskID               uint   `json:"task_id"`
	PublisherID          uint   `json:"publisher_id"`
	Correlation          string `json:"correlation"`
	ExternalConversionID string `json:"external_conversion_id"`
	ReportedAmount       string `json:"reported_amount"`
	Result               string `json:"result"`
	Reason               string `json:"reason"`
	ClientIP             string `json:"client_ip"`
}

// WithdrawalNotifyPayload 提现状态通知任务载荷
type WithdrawalNotifyPayload struct {
	WithdrawalID uint   `json:"withdrawal_id"`
	Status       string `json:"status"`
}

// NewPostbackAuditTask 创建回调审计任务
func NewPostbackAuditTask(payload PostbackAuditPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPostbackAuditFlush, body), nil
}

// NewWithdrawalNotifyTask 创建提现通知任务
func NewWithdrawalNotifyTask(payload WithdrawalNotifyPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskWithdrawalNotify, body), nil
}
