package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/queue"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService 提现服务。
// 前置校验固定顺序：最低额 → 余额 → 月度次数；
// 申请创建与余额冻结扣减在同一事务内完成。
type WithdrawalService struct {
	withdrawalRepo repository.WithdrawalRepository
	ledger         *LedgerService
	settings       *SettingService
	queueClient    *queue.Client
}

// NewWithdrawalService 创建提现服务
func NewWithdrawalService(
	withdrawalRepo repository.WithdrawalRepository,
	ledger *LedgerService,
	settings *SettingService,
	queueClient *queue.Client,
) *WithdrawalService {
	return &WithdrawalService{
		withdrawalRepo: withdrawalRepo,
		ledger:         ledger,
		settings:       settings,
		queueClient:    queueClient,
	}
}

// WithdrawalInput 提现申请入参
type WithdrawalInput struct {
	UserID  uint
	Amount  models.Money
	Method  string
	Address string
}

// Request 发起提现申请
func (s *WithdrawalService) Request(input WithdrawalInput) (*models.Withdrawal, error) {
	if input.UserID == 0 {
		return nil, ErrUserNotFound
	}

	setting, err := s.settings.GetPayoutSetting()
	if err != nil {
		return nil, err
	}

	amount := input.Amount.Decimal.Round(4)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	// 校验顺序不可调换：低于门槛的申请不消耗余额与次数判断
	minAmount := decimal.NewFromFloat(setting.MinWithdrawAmount)
	if amount.LessThan(minAmount) {
		return nil, ErrBelowMinimum
	}

	balance, err := s.ledger.GetBalance(input.UserID)
	if err != nil {
		return nil, err
	}
	if balance.Decimal.LessThan(amount) {
		return nil, ErrInsufficientFunds
	}

	monthStart := calendarMonthStart(time.Now())
	count, err := s.withdrawalRepo.CountByUserSince(input.UserID, monthStart)
	if err != nil {
		return nil, err
	}
	if count >= int64(setting.MonthlyWithdrawals) {
		return nil, ErrWithdrawalMonthlyCapExceeded
	}

	withdrawalNo, err := generateWithdrawalNo()
	if err != nil {
		return nil, err
	}

	withdrawal := &models.Withdrawal{
		WithdrawalNo: withdrawalNo,
		UserID:       input.UserID,
		Amount:       models.NewMoneyFromDecimal(amount),
		Method:       strings.TrimSpace(input.Method),
		Address:      strings.TrimSpace(input.Address),
		Status:       constants.WithdrawalStatusPending,
		RequestedAt:  time.Now(),
	}

	err = s.ledger.repo.Transaction(func(tx *gorm.DB) error {
		if err := s.withdrawalRepo.WithTx(tx).Create(withdrawal); err != nil {
			return err
		}
		// 事务内加锁复核余额，并发申请下不会透支
		_, err := s.ledger.DebitInTx(tx, LedgerChangeInput{
			UserID:    input.UserID,
			Amount:    withdrawal.Amount,
			Type:      constants.LedgerTxnTypeWithdrawReserve,
			Reference: fmt.Sprintf("withdraw_reserve:%s", withdrawalNo),
			Remark:    fmt.Sprintf("withdrawal %s", withdrawalNo),
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify(withdrawal)

	logger.Infow("withdrawal_requested",
		"withdrawal_no", withdrawalNo,
		"user_id", input.UserID,
		"amount", withdrawal.Amount.String(),
		"method", withdrawal.Method,
	)
	return withdrawal, nil
}

// Review 管理员审核提现。驳回时按原单号幂等退款。
func (s *WithdrawalService) Review(withdrawalID uint, action, note string) (*models.Withdrawal, error) {
	var reviewed *models.Withdrawal
	err := s.ledger.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.withdrawalRepo.WithTx(tx)

		withdrawal, err := repo.GetByIDForUpdate(withdrawalID)
		if err != nil {
			return err
		}
		if withdrawal == nil {
			return ErrWithdrawalNotFound
		}
		if withdrawal.Status != constants.WithdrawalStatusPending {
			return ErrWithdrawalAlreadyReviewed
		}

		now := time.Now()
		withdrawal.ReviewNote = strings.TrimSpace(note)
		withdrawal.ReviewedAt = &now

		switch action {
		case constants.WithdrawalActionApprove:
			withdrawal.Status = constants.WithdrawalStatusApproved
		case constants.WithdrawalActionReject:
			withdrawal.Status = constants.WithdrawalStatusRejected
			if _, err := s.ledger.CreditInTx(tx, LedgerChangeInput{
				UserID:    withdrawal.UserID,
				Amount:    withdrawal.Amount,
				Type:      constants.LedgerTxnTypeWithdrawRefund,
				Reference: fmt.Sprintf("withdraw_refund:%s", withdrawal.WithdrawalNo),
				Remark:    fmt.Sprintf("withdrawal %s rejected", withdrawal.WithdrawalNo),
			}); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unsupported review action: %s", action)
		}

		if err := repo.Update(withdrawal); err != nil {
			return err
		}
		reviewed = withdrawal
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notify(reviewed)

	logger.Infow("withdrawal_reviewed",
		"withdrawal_no", reviewed.WithdrawalNo,
		"user_id", reviewed.UserID,
		"status", reviewed.Status,
	)
	return reviewed, nil
}

// GetByID 查询提现申请
func (s *WithdrawalService) GetByID(id uint) (*models.Withdrawal, error) {
	return s.withdrawalRepo.GetByID(id)
}

// List 分页查询提现申请
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.Withdrawal, int64, error) {
	return s.withdrawalRepo.List(filter)
}

func (s *WithdrawalService) notify(withdrawal *models.Withdrawal) {
	if withdrawal == nil || !s.queueClient.Enabled() {
		return
	}
	err := s.queueClient.EnqueueWithdrawalNotify(queue.WithdrawalNotifyPayload{
		WithdrawalID: withdrawal.ID,
		Status:       withdrawal.Status,
	}, 0)
	if err != nil {
		logger.Warnw("withdrawal_notify_enqueue_failed",
			"withdrawal_no", withdrawal.WithdrawalNo,
			"error", err,
		)
	}
}

// calendarMonthStart 返回所在自然月起点（本地时区）
func calendarMonthStart(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// generateWithdrawalNo 生成提现单号：时间戳 + 随机数
func generateWithdrawalNo() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("W%s%06d", time.Now().Format("20060102150405"), n.Int64()), nil
}
