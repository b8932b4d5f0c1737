package repository

import (
	"errors"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
)

// LockerRepository Locker 数据访问接口
type LockerRepository interface {
	GetByID(id uint) (*models.Locker, error)
	GetByIDWithPublisher(id uint) (*models.Locker, error)
	List(filter LockerListFilter) ([]models.Locker, int64, error)
	Create(locker *models.Locker) error
	Update(locker *models.Locker) error
	Delete(id uint) error
}

// GormLockerRepository GORM 实现
type GormLockerRepository struct {
	db *gorm.DB
}

// NewLockerRepository 创建 Locker 仓库
func NewLockerRepository(db *gorm.DB) *GormLockerRepository {
	return &GormLockerRepository{db: db}
}

// GetByID 根据 ID 获取 Locker
func (r *GormLockerRepository) GetByID(id uint) (*models.Locker, error) {
	if id == 0 {
		return nil, nil
	}
	var locker models.Locker
	if err := r.db.First(&locker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &locker, nil
}

// GetByIDWithPublisher 根据 ID 获取 Locker（含所属发布者）
func (r *GormLockerRepository) GetByIDWithPublisher(id uint) (*models.Locker, error) {
	if id == 0 {
		return nil, nil
	}
	var locker models.Locker
	if err := r.db.Preload("Publisher").First(&locker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &locker, nil
}

// List 分页查询 Locker
func (r *GormLockerRepository) List(filter LockerListFilter) ([]models.Locker, int64, error) {
	query := r.db.Model(&models.Locker{})
	if filter.PublisherID != 0 {
		query = query.Where("publisher_id = ?", filter.PublisherID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"title"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var lockers []models.Locker
	if err := query.Order("id DESC").Find(&lockers).Error; err != nil {
		return nil, 0, err
	}
	return lockers, total, nil
}

// Create 创建 Locker
func (r *GormLockerRepository) Create(locker *models.Locker) error {
	return r.db.Create(locker).Error
}

// Update 更新 Locker
func (r *GormLockerRepository) Update(locker *models.Locker) error {
	return r.db.Save(locker).Error
}

// Delete 删除 Locker（软删除）
func (r *GormLockerRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Locker{}, id).Error
}
