package service

import (
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"
)

// LockerService 解锁页管理服务
type LockerService struct {
	lockerRepo repository.LockerRepository
	userRepo   repository.UserRepository
}

// NewLockerService 创建解锁页服务
func NewLockerService(lockerRepo repository.LockerRepository, userRepo repository.UserRepository) *LockerService {
	return &LockerService{lockerRepo: lockerRepo, userRepo: userRepo}
}

// LockerInput 解锁页写入入参
type LockerInput struct {
	PublisherID uint
	Title       string
	Status      string
}

// Create 创建解锁页，发布者必须存在且可用
func (s *LockerService) Create(input LockerInput) (*models.Locker, error) {
	publisher, err := s.userRepo.GetByID(input.PublisherID)
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		return nil, ErrUserNotFound
	}
	if publisher.Status != constants.UserStatusActive {
		return nil, ErrUserDisabled
	}

	locker := &models.Locker{
		PublisherID: publisher.ID,
		Title:       strings.TrimSpace(input.Title),
		Status:      normalizeLockerStatus(input.Status),
	}
	if err := s.lockerRepo.Create(locker); err != nil {
		return nil, err
	}
	return locker, nil
}

// Update 更新解锁页
func (s *LockerService) Update(id uint, input LockerInput) (*models.Locker, error) {
	locker, err := s.lockerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if locker == nil {
		return nil, ErrLockerNotFound
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		locker.Title = title
	}
	if input.Status != "" {
		locker.Status = normalizeLockerStatus(input.Status)
	}
	if err := s.lockerRepo.Update(locker); err != nil {
		return nil, err
	}
	return locker, nil
}

// Delete 删除解锁页
func (s *LockerService) Delete(id uint) error {
	locker, err := s.lockerRepo.GetByID(id)
	if err != nil {
		return err
	}
	if locker == nil {
		return ErrLockerNotFound
	}
	return s.lockerRepo.Delete(id)
}

// GetByID 查询解锁页
func (s *LockerService) GetByID(id uint) (*models.Locker, error) {
	locker, err := s.lockerRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if locker == nil {
		return nil, ErrLockerNotFound
	}
	return locker, nil
}

// List 分页查询解锁页
func (s *LockerService) List(filter repository.LockerListFilter) ([]models.Locker, int64, error) {
	return s.lockerRepo.List(filter)
}

func normalizeLockerStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case constants.LockerStatusDisabled:
		return constants.LockerStatusDisabled
	default:
		return constants.LockerStatusActive
	}
}
