package service

import (
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

// TaskService 广告任务管理服务
type TaskService struct {
	taskRepo repository.TaskRepository
	ruleRepo repository.RateRuleRepository
}

// NewTaskService 创建任务服务
func NewTaskService(taskRepo repository.TaskRepository, ruleRepo repository.RateRuleRepository) *TaskService {
	return &TaskService{taskRepo: taskRepo, ruleRepo: ruleRepo}
}

// TaskInput 任务写入入参
type TaskInput struct {
	Title         string
	AdvertiserURL string
	Tier1CPM      models.Money
	Tier2CPM      models.Money
	Tier3CPM      models.Money
	Status        string
}

// Create 创建任务
func (s *TaskService) Create(input TaskInput) (*models.Task, error) {
	task := &models.Task{}
	applyTaskInput(task, input)
	if err := s.taskRepo.Create(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Update 更新任务
func (s *TaskService) Update(id uint, input TaskInput) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	applyTaskInput(task, input)
	if err := s.taskRepo.Update(task); err != nil {
		return nil, err
	}
	return task, nil
}

// Delete 删除任务并清理其费率规则
func (s *TaskService) Delete(id uint) error {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrTaskNotFound
	}
	if err := s.ruleRepo.DeleteByTask(id); err != nil {
		return err
	}
	return s.taskRepo.Delete(id)
}

// GetByID 查询任务
func (s *TaskService) GetByID(id uint) (*models.Task, error) {
	task, err := s.taskRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, ErrTaskNotFound
	}
	return task, nil
}

// List 分页查询任务
func (s *TaskService) List(filter repository.TaskListFilter) ([]models.Task, int64, error) {
	return s.taskRepo.List(filter)
}

func applyTaskInput(task *models.Task, input TaskInput) {
	task.Title = strings.TrimSpace(input.Title)
	task.AdvertiserURL = strings.TrimSpace(input.AdvertiserURL)
	task.Tier1CPM = models.NewMoneyFromDecimal(nonNegative(input.Tier1CPM.Decimal))
	task.Tier2CPM = models.NewMoneyFromDecimal(nonNegative(input.Tier2CPM.Decimal))
	task.Tier3CPM = models.NewMoneyFromDecimal(nonNegative(input.Tier3CPM.Decimal))
	task.Status = normalizeTaskStatus(input.Status)
}

func normalizeTaskStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.TaskStatusPaused:
		return constants.TaskStatusPaused
	case constants.TaskStatusArchived:
		return constants.TaskStatusArchived
	default:
		return constants.TaskStatusActive
	}
}

func nonNegative(value decimal.Decimal) decimal.Decimal {
	if value.IsNegative() {
		return decimal.Zero
	}
	return value
}
