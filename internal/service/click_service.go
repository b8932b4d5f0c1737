package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/config"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"
)

const (
	clickIDAlphabet     = "abcdefghijklmnopqrstuvwxyz0123456789"
	clickIDSuffixLength = 12
)

// ClickService 点击记录服务
type ClickService struct {
	cfg        *config.Config
	clickRepo  repository.ClickRepository
	taskRepo   repository.TaskRepository
	lockerRepo repository.LockerRepository
	signer     *CorrelationSigner
}

// NewClickService 创建点击记录服务
func NewClickService(
	cfg *config.Config,
	clickRepo repository.ClickRepository,
	taskRepo repository.TaskRepository,
	lockerRepo repository.LockerRepository,
	signer *CorrelationSigner,
) *ClickService {
	return &ClickService{
		cfg:        cfg,
		clickRepo:  clickRepo,
		taskRepo:   taskRepo,
		lockerRepo: lockerRepo,
		signer:     signer,
	}
}

// ClickInput 点击入参
type ClickInput struct {
	LockerID  uint
	TaskID    uint
	VisitorID string
	Device    string
	Country   string
	ClientIP  string
	UserAgent string
}

// ClickResult 点击结果，RedirectURL 用于 302 跳转到广告主落地页
type ClickResult struct {
	Click       *models.Click `json:"click"`
	RedirectURL string        `json:"redirect_url"`
	Reused      bool          `json:"reused"`
}

// Record 记录一次解锁点击并构造跳转链接。
// 同访客在折叠窗口内的重复点击复用已有记录，不产生新 click_id。
func (s *ClickService) Record(input ClickInput) (*ClickResult, error) {
	locker, err := s.lockerRepo.GetByID(input.LockerID)
	if err != nil {
		return nil, err
	}
	if locker == nil || locker.Status != constants.LockerStatusActive {
		return nil, ErrLockerNotFound
	}

	task, err := s.taskRepo.GetByID(input.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil || task.Status != constants.TaskStatusActive {
		return nil, ErrTaskNotFound
	}

	device := NormalizeDevice(input.Device)
	country := NormalizeCountry(input.Country)
	visitorID := strings.TrimSpace(input.VisitorID)

	if window := s.dedupeWindow(); window > 0 && visitorID != "" {
		existing, err := s.clickRepo.GetLatestByVisitorSince(input.LockerID, visitorID, time.Now().Add(-window))
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.TaskID == input.TaskID {
			return &ClickResult{
				Click:       existing,
				RedirectURL: existing.DestinationURL,
				Reused:      true,
			}, nil
		}
	}

	clickID, err := generateClickID()
	if err != nil {
		return nil, err
	}

	destination, err := s.buildDestinationURL(task, locker, clickID)
	if err != nil {
		return nil, err
	}

	click := &models.Click{
		ClickID:        clickID,
		TaskID:         task.ID,
		LockerID:       locker.ID,
		PublisherID:    locker.PublisherID,
		VisitorID:      visitorID,
		Device:         device,
		Country:        country,
		DestinationURL: destination,
		ClientIP:       strings.TrimSpace(input.ClientIP),
		UserAgent:      strings.TrimSpace(input.UserAgent),
	}
	if err := s.clickRepo.Create(click); err != nil {
		return nil, err
	}

	logger.Infow("click_recorded",
		"click_id", clickID,
		"task_id", task.ID,
		"locker_id", locker.ID,
		"publisher_id", locker.PublisherID,
		"device", device,
		"country", country,
	)
	return &ClickResult{Click: click, RedirectURL: destination}, nil
}

// GetByClickID 按点击标识获取记录
func (s *ClickService) GetByClickID(clickID string) (*models.Click, error) {
	return s.clickRepo.GetByClickID(clickID)
}

// List 分页查询点击记录
func (s *ClickService) List(filter repository.ClickListFilter) ([]models.Click, int64, error) {
	return s.clickRepo.List(filter)
}

func (s *ClickService) dedupeWindow() time.Duration {
	if s.cfg == nil || s.cfg.Tracking.ClickDedupeWindowSeconds <= 0 {
		return 0
	}
	return time.Duration(s.cfg.Tracking.ClickDedupeWindowSeconds) * time.Second
}

// buildDestinationURL 在广告主落地页上追加归因参数与回调入口
func (s *ClickService) buildDestinationURL(task *models.Task, locker *models.Locker, clickID string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(task.AdvertiserURL))
	if err != nil {
		return "", fmt.Errorf("invalid advertiser url: %w", err)
	}

	postbackURL, err := s.buildPostbackURL(task, locker, clickID)
	if err != nil {
		return "", err
	}

	query := parsed.Query()
	query.Set("click_id", clickID)
	query.Set("task_id", strconv.FormatUint(uint64(task.ID), 10))
	query.Set("publisher_id", strconv.FormatUint(uint64(locker.PublisherID), 10))
	query.Set("postback_url", postbackURL)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// buildPostbackURL 生成广告主回调地址，携带 click_id 与签名关联令牌双通道
func (s *ClickService) buildPostbackURL(task *models.Task, locker *models.Locker, clickID string) (string, error) {
	base := ""
	if s.cfg != nil {
		base = strings.TrimSpace(s.cfg.Tracking.PostbackBaseURL)
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid postback base url: %w", err)
	}

	query := parsed.Query()
	query.Set(constants.PostbackParamClickID, clickID)
	if s.signer != nil {
		token, err := s.signer.Sign(clickID, task.ID, locker.ID, locker.PublisherID)
		if err != nil {
			return "", err
		}
		query.Set(constants.PostbackParamToken, token)
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// generateClickID 生成不可预测的点击标识：纳秒时间基数 + 随机后缀
func generateClickID() (string, error) {
	suffix := make([]byte, clickIDSuffixLength)
	max := big.NewInt(int64(len(clickIDAlphabet)))
	for i := range suffix {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		suffix[i] = clickIDAlphabet[n.Int64()]
	}
	return fmt.Sprintf("ck_%s%s", strconv.FormatInt(time.Now().UnixNano(), 36), string(suffix)), nil
}
