package repository

import (
	"errors"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository 余额账本数据访问接口
type LedgerRepository interface {
	GetAccountByUserID(userID uint) (*models.BalanceAccount, error)
	GetAccountByUserIDForUpdate(userID uint) (*models.BalanceAccount, error)
	GetAccountsByUserIDs(userIDs []uint) ([]models.BalanceAccount, error)
	CreateAccount(account *models.BalanceAccount) error
	UpdateAccount(account *models.BalanceAccount) error
	ListAccounts(filter LedgerAccountListFilter) ([]models.BalanceAccount, int64, error)
	CreateTransaction(txn *models.BalanceTransaction) error
	GetTransactionByReference(reference string) (*models.BalanceTransaction, error)
	ListTransactions(filter LedgerTransactionListFilter) ([]models.BalanceTransaction, int64, error)
	SumTransactionsByUser(userID uint) (decimal.Decimal, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormLedgerRepository
}

// GormLedgerRepository GORM 账本仓储实现
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建账本仓储
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx 绑定事务
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) *GormLedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx}
}

// Transaction 在数据库事务中执行
func (r *GormLedgerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetAccountByUserID 按用户ID获取余额账户
func (r *GormLedgerRepository) GetAccountByUserID(userID uint) (*models.BalanceAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.BalanceAccount
	if err := r.db.Where("user_id = ?", userID).First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountByUserIDForUpdate 按用户ID加锁获取余额账户
func (r *GormLedgerRepository) GetAccountByUserIDForUpdate(userID uint) (*models.BalanceAccount, error) {
	if userID == 0 {
		return nil, nil
	}
	var account models.BalanceAccount
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &account, nil
}

// GetAccountsByUserIDs 批量获取余额账户
func (r *GormLedgerRepository) GetAccountsByUserIDs(userIDs []uint) ([]models.BalanceAccount, error) {
	if len(userIDs) == 0 {
		return []models.BalanceAccount{}, nil
	}
	var accounts []models.BalanceAccount
	if err := r.db.Where("user_id IN ?", userIDs).Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount 创建余额账户
func (r *GormLedgerRepository) CreateAccount(account *models.BalanceAccount) error {
	return r.db.Create(account).Error
}

// UpdateAccount 更新余额账户
func (r *GormLedgerRepository) UpdateAccount(account *models.BalanceAccount) error {
	return r.db.Save(account).Error
}

// ListAccounts 分页查询余额账户
func (r *GormLedgerRepository) ListAccounts(filter LedgerAccountListFilter) ([]models.BalanceAccount, int64, error) {
	query := r.db.Model(&models.BalanceAccount{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var accounts []models.BalanceAccount
	if err := query.Order("id desc").Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// CreateTransaction 创建余额流水
func (r *GormLedgerRepository) CreateTransaction(txn *models.BalanceTransaction) error {
	return r.db.Create(txn).Error
}

// GetTransactionByReference 按业务引用获取流水
func (r *GormLedgerRepository) GetTransactionByReference(reference string) (*models.BalanceTransaction, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, nil
	}
	var txn models.BalanceTransaction
	if err := r.db.Where("reference = ?", reference).First(&txn).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}

// ListTransactions 分页查询余额流水
func (r *GormLedgerRepository) ListTransactions(filter LedgerTransactionListFilter) ([]models.BalanceTransaction, int64, error) {
	query := r.db.Model(&models.BalanceTransaction{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Direction != "" {
		query = query.Where("direction = ?", filter.Direction)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var txns []models.BalanceTransaction
	if err := query.Order("id desc").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}

// SumTransactionsByUser 按流水重算用户净余额（对账用）
func (r *GormLedgerRepository) SumTransactionsByUser(userID uint) (decimal.Decimal, error) {
	if userID == 0 {
		return decimal.Zero, nil
	}
	var result struct {
		Net decimal.Decimal
	}
	err := r.db.Model(&models.BalanceTransaction{}).
		Select("COALESCE(SUM(CASE WHEN direction = 'in' THEN amount ELSE -amount END), 0) as net").
		Where("user_id = ?", userID).
		Scan(&result).Error
	if err != nil {
		return decimal.Zero, err
	}
	return result.Net, nil
}
