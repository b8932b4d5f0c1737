package worker

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/provider"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/queue"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskPostbackAuditFlush, c.handlePostbackAuditFlush)
	mux.HandleFunc(queue.TaskWithdrawalNotify, c.handleWithdrawalNotify)
}

func (c *Consumer) handlePostbackAuditFlush(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_postback_audit_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.PostbackAuditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_postback_audit_unmarshal_failed", "error", err)
		return err
	}
	if payload.Result == "" {
		logger.Debugw("worker_postback_audit_skip_invalid_payload", "event_id", payload.EventID)
		return nil
	}

	audit := &models.PostbackAudit{
		EventID:              payload.EventID,
		ClickID:              payload.ClickID,
		TaskID:               payload.TaskID,
		PublisherID:          payload.PublisherID,
		Correlation:          payload.Correlation,
		ExternalConversionID: payload.ExternalConversionID,
		ReportedAmount:       payload.ReportedAmount,
		Result:               payload.Result,
		Reason:               payload.Reason,
		ClientIP:             payload.ClientIP,
	}
	if err := c.PostbackAuditRepo.Create(audit); err != nil {
		logger.Warnw("worker_postback_audit_write_failed", "event_id", payload.EventID, "error", err)
		return err
	}
	return nil
}

func (c *Consumer) handleWithdrawalNotify(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_withdrawal_notify_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.WithdrawalNotifyPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_withdrawal_notify_unmarshal_failed", "error", err)
		return err
	}
	if payload.WithdrawalID == 0 {
		logger.Debugw("worker_withdrawal_notify_skip_invalid_payload", "withdrawal_id", payload.WithdrawalID)
		return nil
	}

	withdrawal, err := c.WithdrawalRepo.GetByID(payload.WithdrawalID)
	if err != nil {
		logger.Warnw("worker_withdrawal_notify_fetch_failed", "withdrawal_id", payload.WithdrawalID, "error", err)
		return err
	}
	if withdrawal == nil {
		logger.Debugw("worker_withdrawal_notify_skip_not_found", "withdrawal_id", payload.WithdrawalID)
		return nil
	}

	receiverEmail := ""
	if user, err := c.UserRepo.GetByID(withdrawal.UserID); err == nil && user != nil {
		receiverEmail = strings.TrimSpace(user.Email)
	}

	// 通知出口（邮件/站内信）尚未接入，先落结构化日志保证可追溯
	logger.Infow("withdrawal_status_notified",
		"withdrawal_no", withdrawal.WithdrawalNo,
		"user_id", withdrawal.UserID,
		"status", withdrawal.Status,
		"amount", withdrawal.Amount.String(),
		"receiver_email", receiverEmail,
	)
	return nil
}
