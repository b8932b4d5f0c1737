package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/queue"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// cpmDivisor CPM 按千次计价，单次转化入账 CPM/1000
var cpmDivisor = decimal.NewFromInt(1000)

// PostbackService 广告主回调处理服务。
// 以 event_id（外部转化号优先，缺省回退 click_id）为幂等键，
// 收益事件与余额入账在同一事务内落库，佣金级联随后单独执行。
type PostbackService struct {
	clickRepo   repository.ClickRepository
	revenueRepo repository.RevenueEventRepository
	auditRepo   repository.PostbackAuditRepository
	ledger      *LedgerService
	referral    *ReferralService
	rate        *RateService
	signer      *CorrelationSigner
	queueClient *queue.Client
}

// NewPostbackService 创建回调处理服务
func NewPostbackService(
	clickRepo repository.ClickRepository,
	revenueRepo repository.RevenueEventRepository,
	auditRepo repository.PostbackAuditRepository,
	ledger *LedgerService,
	referral *ReferralService,
	rate *RateService,
	signer *CorrelationSigner,
	queueClient *queue.Client,
) *PostbackService {
	return &PostbackService{
		clickRepo:   clickRepo,
		revenueRepo: revenueRepo,
		auditRepo:   auditRepo,
		ledger:      ledger,
		referral:    referral,
		rate:        rate,
		signer:      signer,
		queueClient: queueClient,
	}
}

// PostbackInput 回调入参
type PostbackInput struct {
	ClickID              string
	Token                string
	ExternalConversionID string
	ReportedAmount       string
	ClientIP             string
}

// PostbackResult 回调处理结果
type PostbackResult struct {
	Event     *models.RevenueEvent `json:"event"`
	Duplicate bool                 `json:"duplicate"`
}

// HandleConversion 处理一次转化回调。
// 重复 event_id 幂等返回已有事件；上报金额只入审计，不参与计费。
func (s *PostbackService) HandleConversion(ctx context.Context, input PostbackInput) (*PostbackResult, error) {
	click, err := s.resolveClick(input)
	if err != nil {
		s.writeAudit(queue.PostbackAuditPayload{
			ClickID:              strings.TrimSpace(input.ClickID),
			Correlation:          strings.TrimSpace(input.Token),
			ExternalConversionID: strings.TrimSpace(input.ExternalConversionID),
			ReportedAmount:       strings.TrimSpace(input.ReportedAmount),
			Result:               constants.PostbackAuditInvalidCorrelation,
			Reason:               err.Error(),
			ClientIP:             input.ClientIP,
		})
		return nil, err
	}

	eventID := strings.TrimSpace(input.ExternalConversionID)
	if eventID == "" {
		eventID = click.ClickID
	}

	existing, err := s.revenueRepo.GetByEventID(eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		s.auditDuplicate(eventID, click, input)
		return &PostbackResult{Event: existing, Duplicate: true}, nil
	}

	cpm, err := s.rate.Resolve(ctx, click.Device, click.Country, click.TaskID)
	if err != nil {
		return nil, err
	}
	amount := cpm.Decimal.Div(cpmDivisor).Round(4)

	event := &models.RevenueEvent{
		EventID:        eventID,
		PublisherID:    click.PublisherID,
		LockerID:       click.LockerID,
		TaskID:         click.TaskID,
		ClickID:        click.ClickID,
		Amount:         models.NewMoneyFromDecimal(amount),
		ReportedAmount: strings.TrimSpace(input.ReportedAmount),
		Source:         constants.RevenueSourcePostback,
		Country:        click.Country,
		Device:         click.Device,
	}

	duplicate, err := s.persistEvent(event)
	if err != nil {
		return nil, err
	}
	if duplicate {
		s.auditDuplicate(eventID, click, input)
		return &PostbackResult{Event: event, Duplicate: true}, nil
	}

	result := constants.PostbackAuditCredited
	if amount.LessThanOrEqual(decimal.Zero) {
		result = constants.PostbackAuditZeroRate
	}
	s.writeAudit(queue.PostbackAuditPayload{
		EventID:              eventID,
		ClickID:              click.ClickID,
		TaskID:               click.TaskID,
		PublisherID:          click.PublisherID,
		Correlation:          strings.TrimSpace(input.Token),
		ExternalConversionID: strings.TrimSpace(input.ExternalConversionID),
		ReportedAmount:       strings.TrimSpace(input.ReportedAmount),
		Result:               result,
		ClientIP:             input.ClientIP,
	})

	// 佣金级联在入账事务提交后同步执行，失败只记日志，不回滚发布者收益
	if amount.GreaterThan(decimal.Zero) {
		s.cascade(event)
	}

	logger.Infow("postback_credited",
		"event_id", eventID,
		"click_id", click.ClickID,
		"publisher_id", click.PublisherID,
		"task_id", click.TaskID,
		"cpm", cpm.String(),
		"amount", event.Amount.String(),
		"reported_amount", event.ReportedAmount,
	)
	return &PostbackResult{Event: event}, nil
}

// ManualCredit 管理员手工补记收益事件，复用回调入账与级联链路
func (s *PostbackService) ManualCredit(publisherID, taskID uint, amount models.Money, eventID, remark string) (*models.RevenueEvent, error) {
	if publisherID == 0 {
		return nil, ErrUserNotFound
	}
	rounded := amount.Decimal.Round(4)
	if rounded.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		eventID = fmt.Sprintf("manual:%d:%d", publisherID, taskID)
	}

	existing, err := s.revenueRepo.GetByEventID(eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEvent
	}

	event := &models.RevenueEvent{
		EventID:     eventID,
		PublisherID: publisherID,
		TaskID:      taskID,
		Amount:      models.NewMoneyFromDecimal(rounded),
		Source:      constants.RevenueSourceManual,
	}
	duplicate, err := s.persistEvent(event)
	if err != nil {
		return nil, err
	}
	if duplicate {
		return nil, ErrDuplicateEvent
	}

	s.cascade(event)

	logger.Infow("manual_revenue_credited",
		"event_id", eventID,
		"publisher_id", publisherID,
		"amount", event.Amount.String(),
		"remark", remark,
	)
	return event, nil
}

// GetByEventID 按幂等键查询收益事件
func (s *PostbackService) GetByEventID(eventID string) (*models.RevenueEvent, error) {
	return s.revenueRepo.GetByEventID(eventID)
}

// ListEvents 分页查询收益事件
func (s *PostbackService) ListEvents(filter repository.RevenueEventListFilter) ([]models.RevenueEvent, int64, error) {
	return s.revenueRepo.List(filter)
}

// ListAudits 分页查询回调审计
func (s *PostbackService) ListAudits(filter repository.PostbackAuditListFilter) ([]models.PostbackAudit, int64, error) {
	return s.auditRepo.List(filter)
}

// resolveClick 回调身份归因：click_id 优先，缺失或无效时回退签名关联令牌
func (s *PostbackService) resolveClick(input PostbackInput) (*models.Click, error) {
	clickID := strings.TrimSpace(input.ClickID)
	if clickID != "" {
		click, err := s.clickRepo.GetByClickID(clickID)
		if err != nil {
			return nil, err
		}
		if click != nil {
			return click, nil
		}
	}

	token := strings.TrimSpace(input.Token)
	if token != "" && s.signer != nil {
		claims, err := s.signer.Parse(token)
		if err != nil {
			return nil, err
		}
		click, err := s.clickRepo.GetByClickID(claims.ClickID)
		if err != nil {
			return nil, err
		}
		if click != nil {
			return click, nil
		}
	}
	return nil, ErrInvalidCorrelation
}

// persistEvent 事件与余额入账同一事务，唯一索引竞态视为重复
func (s *PostbackService) persistEvent(event *models.RevenueEvent) (bool, error) {
	duplicate := false
	err := s.ledger.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.revenueRepo.WithTx(tx).Create(event); err != nil {
			if isUniqueViolation(err) {
				duplicate = true
				return nil
			}
			return err
		}

		if event.Amount.Decimal.LessThanOrEqual(decimal.Zero) {
			return nil
		}
		_, err := s.ledger.CreditInTx(tx, LedgerChangeInput{
			UserID:    event.PublisherID,
			Amount:    event.Amount,
			Type:      constants.LedgerTxnTypeRevenue,
			Reference: fmt.Sprintf("revenue:%s", event.EventID),
			Remark:    fmt.Sprintf("conversion %s", event.EventID),
		})
		return err
	})
	if err != nil {
		return false, err
	}
	if duplicate {
		refreshed, err := s.revenueRepo.GetByEventID(event.EventID)
		if err == nil && refreshed != nil {
			*event = *refreshed
		}
	}
	return duplicate, nil
}

// cascade 佣金级联独立事务，失败不影响已入账收益
func (s *PostbackService) cascade(event *models.RevenueEvent) {
	err := s.ledger.repo.Transaction(func(tx *gorm.DB) error {
		_, err := s.referral.CascadeInTx(tx, event)
		return err
	})
	if err != nil {
		logger.Errorw("referral_cascade_failed",
			"event_id", event.EventID,
			"publisher_id", event.PublisherID,
			"error", err,
		)
	}
}

func (s *PostbackService) auditDuplicate(eventID string, click *models.Click, input PostbackInput) {
	s.writeAudit(queue.PostbackAuditPayload{
		EventID:              eventID,
		ClickID:              click.ClickID,
		TaskID:               click.TaskID,
		PublisherID:          click.PublisherID,
		Correlation:          strings.TrimSpace(input.Token),
		ExternalConversionID: strings.TrimSpace(input.ExternalConversionID),
		ReportedAmount:       strings.TrimSpace(input.ReportedAmount),
		Result:               constants.PostbackAuditDuplicate,
		ClientIP:             input.ClientIP,
	})
}

// writeAudit 审计优先走队列异步落库，队列不可用时同步写
func (s *PostbackService) writeAudit(payload queue.PostbackAuditPayload) {
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueuePostbackAudit(payload)
		if err == nil {
			return
		}
		logger.Warnw("postback_audit_enqueue_failed", "event_id", payload.EventID, "error", err)
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
	if err := s.auditRepo.Create(audit); err != nil {
		logger.Errorw("postback_audit_write_failed", "event_id", payload.EventID, "error", err)
	}
}
