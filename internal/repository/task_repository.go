package repository

import (
	"errors"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"

	"gorm.io/gorm"
)

// TaskRepository 广告任务数据访问接口
type TaskRepository interface {
	GetByID(id uint) (*models.Task, error)
	ListByIDs(ids []uint) ([]models.Task, error)
	List(filter TaskListFilter) ([]models.Task, int64, error)
	Create(task *models.Task) error
	Update(task *models.Task) error
	Delete(id uint) error
}

// GormTaskRepository GORM 实现
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓库
func NewTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

// GetByID 根据 ID 获取任务
func (r *GormTaskRepository) GetByID(id uint) (*models.Task, error) {
	if id == 0 {
		return nil, nil
	}
	var task models.Task
	if err := r.db.First(&task, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &task, nil
}

// ListByIDs 批量获取任务
func (r *GormTaskRepository) ListByIDs(ids []uint) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}
	var tasks []models.Task
	if err := r.db.Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List 分页查询任务
func (r *GormTaskRepository) List(filter TaskListFilter) ([]models.Task, int64, error) {
	query := r.db.Model(&models.Task{})
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"title", "advertiser_url"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var tasks []models.Task
	if err := query.Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}
	return tasks, total, nil
}

// Create 创建任务
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// Update 更新任务
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete 删除任务（软删除）
func (r *GormTaskRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Task{}, id).Error
}
