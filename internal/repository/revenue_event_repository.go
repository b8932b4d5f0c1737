package repository

import (
	"errors"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
)

// RevenueEventRepository 收益事件数据访问接口
type RevenueEventRepository interface {
	Create(event *models.RevenueEvent) error
	GetByEventID(eventID string) (*models.RevenueEvent, error)
	GetByID(id uint) (*models.RevenueEvent, error)
	List(filter RevenueEventListFilter) ([]models.RevenueEvent, int64, error)
	WithTx(tx *gorm.DB) *GormRevenueEventRepository
}

// GormRevenueEventRepository GORM 实现
type GormRevenueEventRepository struct {
	db *gorm.DB
}

// NewRevenueEventRepository 创建收益事件仓库
func NewRevenueEventRepository(db *gorm.DB) *GormRevenueEventRepository {
	return &GormRevenueEventRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRevenueEventRepository) WithTx(tx *gorm.DB) *GormRevenueEventRepository {
	if tx == nil {
		return r
	}
	return &GormRevenueEventRepository{db: tx}
}

// Create 创建收益事件（event_id 唯一索引兜底幂等）
func (r *GormRevenueEventRepository) Create(event *models.RevenueEvent) error {
	return r.db.Create(event).Error
}

// GetByEventID 按幂等键获取收益事件
func (r *GormRevenueEventRepository) GetByEventID(eventID string) (*models.RevenueEvent, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, nil
	}
	var event models.RevenueEvent
	if err := r.db.Where("event_id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// GetByID 按主键获取收益事件
func (r *GormRevenueEventRepository) GetByID(id uint) (*models.RevenueEvent, error) {
	if id == 0 {
		return nil, nil
	}
	var event models.RevenueEvent
	if err := r.db.First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// List 分页查询收益事件
func (r *GormRevenueEventRepository) List(filter RevenueEventListFilter) ([]models.RevenueEvent, int64, error) {
	query := r.db.Model(&models.RevenueEvent{})
	if filter.PublisherID != 0 {
		query = query.Where("publisher_id = ?", filter.PublisherID)
	}
	if filter.TaskID != 0 {
		query = query.Where("task_id = ?", filter.TaskID)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
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

	var events []models.RevenueEvent
	if err := query.Order("id DESC").Find(&events).Error; err != nil {
		return nil, 0, err
	}
	return events, total, nil
}
