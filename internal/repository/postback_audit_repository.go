package repository

import (
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
)

// PostbackAuditRepository 回调审计数据访问接口
type PostbackAuditRepository interface {
	Create(audit *models.PostbackAudit) error
	List(filter PostbackAuditListFilter) ([]models.PostbackAudit, int64, error)
}

// GormPostbackAuditRepository GORM 实现
type GormPostbackAuditRepository struct {
	db *gorm.DB
}

// NewPostbackAuditRepository 创建回调审计仓库
func NewPostbackAuditRepository(db *gorm.DB) *GormPostbackAuditRepository {
	return &GormPostbackAuditRepository{db: db}
}

// Create 创建审计记录
func (r *GormPostbackAuditRepository) Create(audit *models.PostbackAudit) error {
	return r.db.Create(audit).Error
}

// List 分页查询审计记录
func (r *GormPostbackAuditRepository) List(filter PostbackAuditListFilter) ([]models.PostbackAudit, int64, error) {
	query := r.db.Model(&models.PostbackAudit{})
	if filter.Result != "" {
		query = query.Where("result = ?", filter.Result)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"event_id", "click_id", "external_conversion_id"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
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

	var audits []models.PostbackAudit
	if err := query.Order("id DESC").Find(&audits).Error; err != nil {
		return nil, 0, err
	}
	return audits, total, nil
}
