package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
)

// ClickRepository 点击记录数据访问接口
type ClickRepository interface {
	Create(click *models.Click) error
	GetByClickID(clickID string) (*models.Click, error)
	GetLatestByVisitorSince(lockerID uint, visitorID string, since time.Time) (*models.Click, error)
	List(filter ClickListFilter) ([]models.Click, int64, error)
	CountByVisitorSince(lockerID uint, visitorID string, since time.Time) (int64, error)
}

// GormClickRepository GORM 实现
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository 创建点击记录仓库
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// Create 创建点击记录
func (r *GormClickRepository) Create(click *models.Click) error {
	return r.db.Create(click).Error
}

// GetByClickID 按点击标识获取记录
func (r *GormClickRepository) GetByClickID(clickID string) (*models.Click, error) {
	clickID = strings.TrimSpace(clickID)
	if clickID == "" {
		return nil, nil
	}
	var click models.Click
	if err := r.db.Where("click_id = ?", clickID).First(&click).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// GetLatestByVisitorSince 获取访客在折叠窗口内最近一次点击
func (r *GormClickRepository) GetLatestByVisitorSince(lockerID uint, visitorID string, since time.Time) (*models.Click, error) {
	visitorID = strings.TrimSpace(visitorID)
	if lockerID == 0 || visitorID == "" {
		return nil, nil
	}
	var click models.Click
	if err := r.db.Where("locker_id = ? AND visitor_id = ? AND created_at >= ?", lockerID, visitorID, since).
		Order("id DESC").
		First(&click).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &click, nil
}

// List 分页查询点击记录
func (r *GormClickRepository) List(filter ClickListFilter) ([]models.Click, int64, error) {
	query := r.db.Model(&models.Click{})
	if filter.TaskID != 0 {
		query = query.Where("task_id = ?", filter.TaskID)
	}
	if filter.LockerID != 0 {
		query = query.Where("locker_id = ?", filter.LockerID)
	}
	if filter.PublisherID != 0 {
		query = query.Where("publisher_id = ?", filter.PublisherID)
	}
	if filter.Device != "" {
		query = query.Where("device = ?", filter.Device)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
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

	var clicks []models.Click
	if err := query.Order("id DESC").Find(&clicks).Error; err != nil {
		return nil, 0, err
	}
	return clicks, total, nil
}

// CountByVisitorSince 统计访客近期点击次数（防刷窗口）
func (r *GormClickRepository) CountByVisitorSince(lockerID uint, visitorID string, since time.Time) (int64, error) {
	visitorID = strings.TrimSpace(visitorID)
	if lockerID == 0 || visitorID == "" {
		return 0, nil
	}
	var count int64
	err := r.db.Model(&models.Click{}).
		Where("locker_id = ? AND visitor_id = ? AND created_at >= ?", lockerID, visitorID, since).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
