package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	referralCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	referralCodeLength   = 8
)

// ReferralService 推荐关系与佣金服务
type ReferralService struct {
	referralRepo repository.ReferralRepository
	userRepo     repository.UserRepository
	ledger       *LedgerService
	settings     *SettingService
}

// NewReferralService 创建推荐服务
func NewReferralService(
	referralRepo repository.ReferralRepository,
	userRepo repository.UserRepository,
	ledger *LedgerService,
	settings *SettingService,
) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		userRepo:     userRepo,
		ledger:       ledger,
		settings:     settings,
	}
}

// Register 绑定推荐关系。每个用户只能被推荐一次，自荐拒绝。
func (s *ReferralService) Register(referralCode string, referredID uint) (*models.Referral, error) {
	referralCode = strings.TrimSpace(referralCode)
	if referralCode == "" {
		return nil, ErrReferralCodeInvalid
	}

	referrer, err := s.userRepo.GetByReferralCode(referralCode)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, ErrReferralCodeInvalid
	}
	if referrer.ID == referredID {
		return nil, ErrReferralSelf
	}

	referred, err := s.userRepo.GetByID(referredID)
	if err != nil {
		return nil, err
	}
	if referred == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.referralRepo.GetByReferredID(referredID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyReferred
	}

	setting, err := s.settings.GetPayoutSetting()
	if err != nil {
		return nil, err
	}

	referral := &models.Referral{
		ReferrerID:     referrer.ID,
		ReferredID:     referredID,
		Status:         constants.ReferralStatusActive,
		CommissionRate: models.NewMoneyFromDecimal(decimal.NewFromFloat(setting.ReferralRate)),
		TotalEarned:    models.NewMoneyFromDecimal(decimal.Zero),
	}
	if err := s.referralRepo.Create(referral); err != nil {
		// referred_id 唯一索引兜底并发注册
		if isUniqueViolation(err) {
			return nil, ErrAlreadyReferred
		}
		return nil, err
	}

	logger.Infow("referral_registered",
		"referrer_id", referrer.ID,
		"referred_id", referredID,
		"commission_rate", referral.CommissionRate.String(),
	)
	return referral, nil
}

// CascadeInTx 在收益事件落账事务内为推荐人计提佣金。
// 佣金 = 事件金额 × 绑定时费率；(referral_id, revenue_event_id) 唯一，重放不会重复计提。
func (s *ReferralService) CascadeInTx(tx *gorm.DB, event *models.RevenueEvent) (*models.ReferralCommission, error) {
	if event == nil || event.ID == 0 {
		return nil, nil
	}

	repo := s.referralRepo.WithTx(tx)

	referral, err := repo.GetByReferredIDForUpdate(event.PublisherID)
	if err != nil {
		return nil, err
	}
	if referral == nil || referral.Status != constants.ReferralStatusActive {
		return nil, nil
	}

	existing, err := repo.GetCommission(referral.ID, event.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	amount := event.Amount.Decimal.Mul(referral.CommissionRate.Decimal).Round(4)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, nil
	}

	commission := &models.ReferralCommission{
		ReferralID:     referral.ID,
		RevenueEventID: event.ID,
		ReferrerID:     referral.ReferrerID,
		ReferredID:     referral.ReferredID,
		BaseAmount:     event.Amount,
		Rate:           referral.CommissionRate,
		Amount:         models.NewMoneyFromDecimal(amount),
	}
	if err := repo.CreateCommission(commission); err != nil {
		if isUniqueViolation(err) {
			return repo.GetCommission(referral.ID, event.ID)
		}
		return nil, err
	}

	if _, err := s.ledger.CreditInTx(tx, LedgerChangeInput{
		UserID:    referral.ReferrerID,
		Amount:    commission.Amount,
		Type:      constants.LedgerTxnTypeReferralCommission,
		Reference: fmt.Sprintf("referral_commission:%d:%d", referral.ID, event.ID),
		Remark:    fmt.Sprintf("referral commission for event %s", event.EventID),
	}); err != nil {
		return nil, err
	}

	referral.TotalEarned = models.NewMoneyFromDecimal(referral.TotalEarned.Decimal.Add(amount).Round(4))
	if err := repo.Update(referral); err != nil {
		return nil, err
	}

	logger.Infow("referral_commission_credited",
		"referral_id", referral.ID,
		"referrer_id", referral.ReferrerID,
		"revenue_event_id", event.ID,
		"base_amount", event.Amount.String(),
		"rate", referral.CommissionRate.String(),
		"amount", commission.Amount.String(),
	)
	return commission, nil
}

// GetByReferredID 查询用户的推荐关系
func (s *ReferralService) GetByReferredID(referredID uint) (*models.Referral, error) {
	return s.referralRepo.GetByReferredID(referredID)
}

// ListByReferrer 分页查询推荐人名下的推荐关系
func (s *ReferralService) ListByReferrer(referrerID uint, page, pageSize int) ([]models.Referral, int64, error) {
	return s.referralRepo.ListByReferrer(referrerID, page, pageSize)
}

// ListCommissions 分页查询佣金记录
func (s *ReferralService) ListCommissions(filter repository.ReferralCommissionListFilter) ([]models.ReferralCommission, int64, error) {
	return s.referralRepo.ListCommissions(filter)
}

// generateReferralCode 生成易读的推荐码（剔除易混淆字符）
func generateReferralCode() (string, error) {
	code := make([]byte, referralCodeLength)
	max := big.NewInt(int64(len(referralCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = referralCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
