package repository

import (
	"errors"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReferralRepository 推荐关系与佣金数据访问接口
type ReferralRepository interface {
	GetByID(id uint) (*models.Referral, error)
	GetByReferredID(referredID uint) (*models.Referral, error)
	GetByReferredIDForUpdate(referredID uint) (*models.Referral, error)
	ListByReferrer(referrerID uint, page, pageSize int) ([]models.Referral, int64, error)
	Create(referral *models.Referral) error
	Update(referral *models.Referral) error
	CreateCommission(commission *models.ReferralCommission) error
	GetCommission(referralID, revenueEventID uint) (*models.ReferralCommission, error)
	ListCommissions(filter ReferralCommissionListFilter) ([]models.ReferralCommission, int64, error)
	WithTx(tx *gorm.DB) *GormReferralRepository
}

// GormReferralRepository GORM 实现
type GormReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository 创建推荐仓库
func NewReferralRepository(db *gorm.DB) *GormReferralRepository {
	return &GormReferralRepository{db: db}
}

// WithTx 绑定事务
func (r *GormReferralRepository) WithTx(tx *gorm.DB) *GormReferralRepository {
	if tx == nil {
		return r
	}
	return &GormReferralRepository{db: tx}
}

// GetByID 根据 ID 获取推荐关系
func (r *GormReferralRepository) GetByID(id uint) (*models.Referral, error) {
	if id == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.First(&referral, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByReferredID 获取被推荐用户的推荐关系
func (r *GormReferralRepository) GetByReferredID(referredID uint) (*models.Referral, error) {
	if referredID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Where("referred_id = ?", referredID).First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// GetByReferredIDForUpdate 加锁获取被推荐用户的推荐关系
func (r *GormReferralRepository) GetByReferredIDForUpdate(referredID uint) (*models.Referral, error) {
	if referredID == 0 {
		return nil, nil
	}
	var referral models.Referral
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("referred_id = ?", referredID).
		First(&referral).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &referral, nil
}

// ListByReferrer 分页查询推荐人名下的推荐关系
func (r *GormReferralRepository) ListByReferrer(referrerID uint, page, pageSize int) ([]models.Referral, int64, error) {
	query := r.db.Model(&models.Referral{}).Where("referrer_id = ?", referrerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, page, pageSize)

	var referrals []models.Referral
	if err := query.Order("id DESC").Find(&referrals).Error; err != nil {
		return nil, 0, err
	}
	return referrals, total, nil
}

// Create 创建推荐关系
func (r *GormReferralRepository) Create(referral *models.Referral) error {
	return r.db.Create(referral).Error
}

// Update 更新推荐关系
func (r *GormReferralRepository) Update(referral *models.Referral) error {
	return r.db.Save(referral).Error
}

// CreateCommission 创建佣金记录（复合唯一索引兜底幂等）
func (r *GormReferralRepository) CreateCommission(commission *models.ReferralCommission) error {
	return r.db.Create(commission).Error
}

// GetCommission 按推荐关系与触发事件获取佣金记录
func (r *GormReferralRepository) GetCommission(referralID, revenueEventID uint) (*models.ReferralCommission, error) {
	if referralID == 0 || revenueEventID == 0 {
		return nil, nil
	}
	var commission models.ReferralCommission
	if err := r.db.Where("referral_id = ? AND revenue_event_id = ?", referralID, revenueEventID).
		First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// ListCommissions 分页查询佣金记录
func (r *GormReferralRepository) ListCommissions(filter ReferralCommissionListFilter) ([]models.ReferralCommission, int64, error) {
	query := r.db.Model(&models.ReferralCommission{})
	if filter.ReferralID != 0 {
		query = query.Where("referral_id = ?", filter.ReferralID)
	}
	if filter.ReferrerID != 0 {
		query = query.Where("referrer_id = ?", filter.ReferrerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var commissions []models.ReferralCommission
	if err := query.Order("id DESC").Find(&commissions).Error; err != nil {
		return nil, 0, err
	}
	return commissions, total, nil
}
