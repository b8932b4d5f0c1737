package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/cache"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/logger"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/shopspring/decimal"
)

const rateRuleCacheTTLDefault = 5 * time.Minute

// RateService 费率解析服务
type RateService struct {
	ruleRepo repository.RateRuleRepository
	taskRepo repository.TaskRepository
	cacheTTL time.Duration
}

// NewRateService 创建费率解析服务
func NewRateService(ruleRepo repository.RateRuleRepository, taskRepo repository.TaskRepository, cacheTTLSeconds int) *RateService {
	ttl := rateRuleCacheTTLDefault
	if cacheTTLSeconds > 0 {
		ttl = time.Duration(cacheTTLSeconds) * time.Second
	}
	return &RateService{
		ruleRepo: ruleRepo,
		taskRepo: taskRepo,
		cacheTTL: ttl,
	}
}

// cachedRate 费率缓存载荷
type cachedRate struct {
	CPM string `json:"cpm"`
}

// Resolve 解析 device × country × task 的 CPM。
// 维度无法命中时逐级回退（精确规则 → 任务层级价 → 0），任何未知取值都不报错。
func (s *RateService) Resolve(ctx context.Context, device, country string, taskID uint) (models.Money, error) {
	device = NormalizeDevice(device)
	country = NormalizeCountry(country)

	cacheKey := rateRuleCacheKey(device, country, taskID)
	if cache.Enabled() {
		var cached cachedRate
		hit, err := cache.GetJSON(ctx, cacheKey, &cached)
		if err != nil {
			logger.Warnw("rate_cache_read_failed", "key", cacheKey, "error", err)
		} else if hit {
			if d, err := decimal.NewFromString(cached.CPM); err == nil {
				return models.NewMoneyFromDecimal(d), nil
			}
		}
	}

	cpm, err := s.resolveFromStore(device, country, taskID)
	if err != nil {
		return models.Money{}, err
	}

	if cache.Enabled() {
		payload := cachedRate{CPM: cpm.String()}
		if err := cache.SetJSON(ctx, cacheKey, payload, s.cacheTTL); err != nil {
			logger.Warnw("rate_cache_write_failed", "key", cacheKey, "error", err)
		}
	}
	return cpm, nil
}

func (s *RateService) resolveFromStore(device, country string, taskID uint) (models.Money, error) {
	rule, err := s.ruleRepo.GetByDimensions(device, country, taskID)
	if err != nil {
		return models.Money{}, err
	}
	if rule != nil {
		return rule.CPM, nil
	}

	task, err := s.taskRepo.GetByID(taskID)
	if err != nil {
		return models.Money{}, err
	}
	if task == nil {
		return models.NewMoneyFromDecimal(decimal.Zero), nil
	}

	switch TierForCountry(country) {
	case constants.CountryTier1:
		return task.Tier1CPM, nil
	case constants.CountryTier2:
		return task.Tier2CPM, nil
	default:
		return task.Tier3CPM, nil
	}
}

// RateRuleInput 费率规则写入入参
type RateRuleInput struct {
	Device  string       `json:"device"`
	Country string       `json:"country"`
	TaskID  uint         `json:"task_id"`
	CPM     models.Money `json:"cpm"`
}

// UpsertRules 批量写入费率规则并刷新缓存，同维度重复以最后一条为准
func (s *RateService) UpsertRules(ctx context.Context, inputs []RateRuleInput) ([]models.RateRule, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	rules := make([]models.RateRule, 0, len(inputs))
	seen := make(map[string]int, len(inputs))
	for _, input := range inputs {
		device := NormalizeDevice(input.Device)
		country := NormalizeCountry(input.Country)
		if country == "" || input.TaskID == 0 {
			return nil, ErrRateRuleInvalid
		}
		if input.CPM.Decimal.IsNegative() {
			return nil, ErrRateRuleInvalid
		}

		rule := models.RateRule{
			Device:  device,
			Country: country,
			TaskID:  input.TaskID,
			CPM:     input.CPM,
		}
		key := fmt.Sprintf("%s:%s:%d", device, country, input.TaskID)
		if idx, ok := seen[key]; ok {
			rules[idx] = rule
			continue
		}
		seen[key] = len(rules)
		rules = append(rules, rule)
	}

	if err := s.ruleRepo.BulkUpsert(rules); err != nil {
		return nil, err
	}
	s.InvalidateRules(ctx, rules)
	return rules, nil
}

// ListRules 分页查询费率规则
func (s *RateService) ListRules(filter repository.RateRuleListFilter) ([]models.RateRule, int64, error) {
	return s.ruleRepo.List(filter)
}

// InvalidateRules 费率规则变更后清理缓存
func (s *RateService) InvalidateRules(ctx context.Context, rules []models.RateRule) {
	if !cache.Enabled() {
		return
	}
	for _, rule := range rules {
		key := rateRuleCacheKey(NormalizeDevice(rule.Device), NormalizeCountry(rule.Country), rule.TaskID)
		if err := cache.Del(ctx, key); err != nil {
			logger.Warnw("rate_cache_invalidate_failed", "key", key, "error", err)
		}
	}
}

func rateRuleCacheKey(device, country string, taskID uint) string {
	return fmt.Sprintf("%s:%s:%s:%d", constants.CacheKeyRateRule, device, country, taskID)
}
