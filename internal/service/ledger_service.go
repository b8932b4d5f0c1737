package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const ledgerRemarkMaxRune = 255

// LedgerService 余额账本服务。
// 账户余额是物化值，资金变动一律以 balance_transactions 追加记录为准，
// 同一用户的并发变更靠账户行锁串行化。
type LedgerService struct {
	repo repository.LedgerRepository
}

// NewLedgerService 创建账本服务
func NewLedgerService(repo repository.LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo}
}

// LedgerChangeInput 余额变更入参，金额必须为正数
type LedgerChangeInput struct {
	UserID    uint
	Amount    models.Money
	Type      string
	Reference string
	Remark    string
}

// Credit 入账（独立事务）
func (s *LedgerService) Credit(input LedgerChangeInput) (*models.BalanceTransaction, error) {
	var txn *models.BalanceTransaction
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		created, err := s.CreditInTx(tx, input)
		if err != nil {
			return err
		}
		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// CreditInTx 在既有事务内入账，Reference 命中已有流水时幂等返回
func (s *LedgerService) CreditInTx(tx *gorm.DB, input LedgerChangeInput) (*models.BalanceTransaction, error) {
	return s.changeBalance(tx, input, constants.LedgerTxnDirectionIn)
}

// Debit 出账（独立事务），余额不足返回 ErrInsufficientFunds
func (s *LedgerService) Debit(input LedgerChangeInput) (*models.BalanceTransaction, error) {
	var txn *models.BalanceTransaction
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		created, err := s.DebitInTx(tx, input)
		if err != nil {
			return err
		}
		txn = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DebitInTx 在既有事务内出账
func (s *LedgerService) DebitInTx(tx *gorm.DB, input LedgerChangeInput) (*models.BalanceTransaction, error) {
	return s.changeBalance(tx, input, constants.LedgerTxnDirectionOut)
}

// GetBalance 查询用户当前余额，无账户视为 0
func (s *LedgerService) GetBalance(userID uint) (models.Money, error) {
	account, err := s.repo.GetAccountByUserID(userID)
	if err != nil {
		return models.Money{}, err
	}
	if account == nil {
		return models.NewMoneyFromDecimal(decimal.Zero), nil
	}
	return account.Balance, nil
}

// GetBalances 批量查询余额
func (s *LedgerService) GetBalances(userIDs []uint) (map[uint]models.Money, error) {
	result := make(map[uint]models.Money, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}
	accounts, err := s.repo.GetAccountsByUserIDs(userIDs)
	if err != nil {
		return nil, err
	}
	for _, account := range accounts {
		result[account.UserID] = account.Balance
	}
	return result, nil
}

// ListTransactions 分页查询余额流水
func (s *LedgerService) ListTransactions(filter repository.LedgerTransactionListFilter) ([]models.BalanceTransaction, int64, error) {
	return s.repo.ListTransactions(filter)
}

// ReconcileResult 单用户对账结果
type ReconcileResult struct {
	UserID     uint         `json:"user_id"`
	Balance    models.Money `json:"balance"`
	LedgerSum  models.Money `json:"ledger_sum"`
	Consistent bool         `json:"consistent"`
}

// Reconcile 校验物化余额与流水合计是否一致
func (s *LedgerService) Reconcile(userID uint) (*ReconcileResult, error) {
	account, err := s.repo.GetAccountByUserID(userID)
	if err != nil {
		return nil, err
	}
	balance := decimal.Zero
	if account != nil {
		balance = account.Balance.Decimal
	}

	sum, err := s.repo.SumTransactionsByUser(userID)
	if err != nil {
		return nil, err
	}

	result := &ReconcileResult{
		UserID:     userID,
		Balance:    models.NewMoneyFromDecimal(balance),
		LedgerSum:  models.NewMoneyFromDecimal(sum),
		Consistent: balance.Round(4).Equal(sum.Round(4)),
	}
	if !result.Consistent {
		logger.Errorw("ledger_reconcile_mismatch",
			"user_id", userID,
			"balance", result.Balance.String(),
			"ledger_sum", result.LedgerSum.String(),
		)
	}
	return result, nil
}

// ReconcileAll 全量对账，返回不一致的账户
func (s *LedgerService) ReconcileAll(pageSize int) ([]ReconcileResult, error) {
	if pageSize <= 0 {
		pageSize = 200
	}

	var mismatches []ReconcileResult
	for page := 1; ; page++ {
		accounts, _, err := s.repo.ListAccounts(repository.LedgerAccountListFilter{
			Page:     page,
			PageSize: pageSize,
		})
		if err != nil {
			return nil, err
		}
		if len(accounts) == 0 {
			break
		}
		for _, account := range accounts {
			result, err := s.Reconcile(account.UserID)
			if err != nil {
				return nil, err
			}
			if !result.Consistent {
				mismatches = append(mismatches, *result)
			}
		}
		if len(accounts) < pageSize {
			break
		}
	}
	return mismatches, nil
}

func (s *LedgerService) changeBalance(tx *gorm.DB, input LedgerChangeInput, direction string) (*models.BalanceTransaction, error) {
	if input.UserID == 0 {
		return nil, ErrUserNotFound
	}
	amount := input.Amount.Decimal.Round(4)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	repo := s.repo.WithTx(tx)

	reference := strings.TrimSpace(input.Reference)
	explicitReference := reference != ""
	if !explicitReference {
		reference = buildLedgerReference(input.Type, input.UserID)
	}

	account, err := s.ensureAccountForUpdate(repo, input.UserID)
	if err != nil {
		return nil, err
	}

	if explicitReference {
		// 显式引用是幂等键，持有账户行锁后先查后写，并发重放只入账一次
		existing, err := repo.GetTransactionByReference(reference)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	before := account.Balance.Decimal.Round(4)
	var after decimal.Decimal
	if direction == constants.LedgerTxnDirectionOut {
		after = before.Sub(amount).Round(4)
		if after.IsNegative() {
			return nil, ErrInsufficientFunds
		}
	} else {
		after = before.Add(amount).Round(4)
	}

	account.Balance = models.NewMoneyFromDecimal(after)
	if err := repo.UpdateAccount(account); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccountUpdateFailed, err)
	}

	txn := &models.BalanceTransaction{
		UserID:        input.UserID,
		Type:          input.Type,
		Direction:     direction,
		Amount:        models.NewMoneyFromDecimal(amount),
		BalanceBefore: models.NewMoneyFromDecimal(before),
		BalanceAfter:  models.NewMoneyFromDecimal(after),
		Reference:     reference,
		Remark:        cleanLedgerRemark(input.Remark),
	}
	if err := repo.CreateTransaction(txn); err != nil {
		if isUniqueViolation(err) {
			existing, lookupErr := repo.GetTransactionByReference(reference)
			if lookupErr == nil && existing != nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("%w: %v", ErrTransactionCreateFailed, err)
	}
	return txn, nil
}

func (s *LedgerService) ensureAccountForUpdate(repo *repository.GormLedgerRepository, userID uint) (*models.BalanceAccount, error) {
	account, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		return account, nil
	}

	account = &models.BalanceAccount{
		UserID:  userID,
		Balance: models.NewMoneyFromDecimal(decimal.Zero),
	}
	if err := repo.CreateAccount(account); err != nil {
		// 并发创建撞唯一索引后重查加锁
		existing, lookupErr := repo.GetAccountByUserIDForUpdate(userID)
		if lookupErr == nil && existing != nil {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrAccountCreateFailed, err)
	}

	locked, err := repo.GetAccountByUserIDForUpdate(userID)
	if err != nil {
		return nil, err
	}
	if locked == nil {
		return account, nil
	}
	return locked, nil
}

func buildLedgerReference(prefix string, userID uint) string {
	if prefix == "" {
		prefix = "ledger"
	}
	return fmt.Sprintf("%s:%d:%d", prefix, userID, time.Now().UnixNano())
}

func cleanLedgerRemark(remark string) string {
	remark = strings.TrimSpace(remark)
	runes := []rune(remark)
	if len(runes) > ledgerRemarkMaxRune {
		return string(runes[:ledgerRemarkMaxRune])
	}
	return remark
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
