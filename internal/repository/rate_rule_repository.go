package repository

import (
	"errors"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateRuleRepository 费率规则数据访问接口
type RateRuleRepository interface {
	GetByDimensions(device, country string, taskID uint) (*models.RateRule, error)
	BulkUpsert(rules []models.RateRule) error
	List(filter RateRuleListFilter) ([]models.RateRule, int64, error)
	DeleteByTask(taskID uint) error
}

// GormRateRuleRepository GORM 实现
type GormRateRuleRepository struct {
	db *gorm.DB
}

// NewRateRuleRepository 创建费率规则仓库
func NewRateRuleRepository(db *gorm.DB) *GormRateRuleRepository {
	return &GormRateRuleRepository{db: db}
}

// GetByDimensions 按精确维度获取费率规则
func (r *GormRateRuleRepository) GetByDimensions(device, country string, taskID uint) (*models.RateRule, error) {
	device = strings.TrimSpace(device)
	country = strings.TrimSpace(country)
	if device == "" || country == "" || taskID == 0 {
		return nil, nil
	}
	var rule models.RateRule
	if err := r.db.Where("device = ? AND country = ? AND task_id = ?", device, country, taskID).
		First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rule, nil
}

// BulkUpsert 批量写入费率规则（同维度覆盖）
func (r *GormRateRuleRepository) BulkUpsert(rules []models.RateRule) error {
	if len(rules) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "device"}, {Name: "country"}, {Name: "task_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cpm", "updated_at"}),
	}).Create(&rules).Error
}

// List 分页查询费率规则
func (r *GormRateRuleRepository) List(filter RateRuleListFilter) ([]models.RateRule, int64, error) {
	query := r.db.Model(&models.RateRule{})
	if filter.TaskID != 0 {
		query = query.Where("task_id = ?", filter.TaskID)
	}
	if filter.Device != "" {
		query = query.Where("device = ?", filter.Device)
	}
	if filter.Country != "" {
		query = query.Where("country = ?", filter.Country)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var rules []models.RateRule
	if err := query.Order("task_id ASC, device ASC, country ASC").Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

// DeleteByTask 删除任务下全部费率规则
func (r *GormRateRuleRepository) DeleteByTask(taskID uint) error {
	if taskID == 0 {
		return nil
	}
	return r.db.Where("task_id = ?", taskID).Delete(&models.RateRule{}).Error
}
