package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository 提现申请数据访问接口
type WithdrawalRepository interface {
	Create(withdrawal *models.Withdrawal) error
	Update(withdrawal *models.Withdrawal) error
	GetByID(id uint) (*models.Withdrawal, error)
	GetByIDForUpdate(id uint) (*models.Withdrawal, error)
	GetByWithdrawalNo(withdrawalNo string) (*models.Withdrawal, error)
	CountByUserSince(userID uint, since time.Time) (int64, error)
	List(filter WithdrawalListFilter) ([]models.Withdrawal, int64, error)
	WithTx(tx *gorm.DB) *GormWithdrawalRepository
}

// GormWithdrawalRepository GORM 实现
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository 创建提现仓库
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx 绑定事务
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) *GormWithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Create 创建提现申请
func (r *GormWithdrawalRepository) Create(withdrawal *models.Withdrawal) error {
	return r.db.Create(withdrawal).Error
}

// Update 更新提现申请
func (r *GormWithdrawalRepository) Update(withdrawal *models.Withdrawal) error {
	return r.db.Save(withdrawal).Error
}

// GetByID 根据 ID 获取提现申请
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.Withdrawal, error) {
	if id == 0 {
		return nil, nil
	}
	var withdrawal models.Withdrawal
	if err := r.db.First(&withdrawal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// GetByIDForUpdate 根据 ID 加锁获取提现申请
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.Withdrawal, error) {
	if id == 0 {
		return nil, nil
	}
	var withdrawal models.Withdrawal
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&withdrawal, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// GetByWithdrawalNo 根据提现单号获取提现申请
func (r *GormWithdrawalRepository) GetByWithdrawalNo(withdrawalNo string) (*models.Withdrawal, error) {
	withdrawalNo = strings.TrimSpace(withdrawalNo)
	if withdrawalNo == "" {
		return nil, nil
	}
	var withdrawal models.Withdrawal
	if err := r.db.Where("withdrawal_no = ?", withdrawalNo).First(&withdrawal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &withdrawal, nil
}

// CountByUserSince 统计用户某时间之后的提现申请数（月度限额用）
func (r *GormWithdrawalRepository) CountByUserSince(userID uint, since time.Time) (int64, error) {
	if userID == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.Withdrawal{}).
		Where("user_id = ? AND requested_at >= ?", userID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// List 分页查询提现申请
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.Withdrawal, int64, error) {
	query := r.db.Model(&models.Withdrawal{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.WithdrawalNo != "" {
		query = query.Where("withdrawal_no LIKE ?", "%"+filter.WithdrawalNo+"%")
	}
	if filter.RequestedFrom != nil {
		query = query.Where("requested_at >= ?", *filter.RequestedFrom)
	}
	if filter.RequestedTo != nil {
		query = query.Where("requested_at <= ?", *filter.RequestedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var withdrawals []models.Withdrawal
	if err := query.Order("id DESC").Find(&withdrawals).Error; err != nil {
		return nil, 0, err
	}
	return withdrawals, total, nil
}
