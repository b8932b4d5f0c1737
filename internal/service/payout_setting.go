package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
)

const (
	payoutReferralRateMin        = 0
	payoutReferralRateMax        = 1
	payoutMinWithdrawAmountMin   = 0
	payoutMonthlyWithdrawalsMin  = 1
	payoutMonthlyWithdrawalsMax  = 1000
	payoutWithdrawMethodsMaxSize = 20
	payoutWithdrawMethodMaxRune  = 50
)

// PayoutSetting 收益结算配置
type PayoutSetting struct {
	MinWithdrawAmount  float64  `json:"min_withdraw_amount"`
	MonthlyWithdrawals int      `json:"monthly_withdrawals"`
	ReferralRate       float64  `json:"referral_rate"`
	Currency           string   `json:"currency"`
	WithdrawMethods    []string `json:"withdraw_methods"`
}

// PayoutDefaultSetting 默认收益结算配置
func PayoutDefaultSetting() PayoutSetting {
	return NormalizePayoutSetting(PayoutSetting{
		MinWithdrawAmount:  50,
		MonthlyWithdrawals: 3,
		ReferralRate:       0.1,
		Currency:           constants.SiteCurrencyDefault,
		WithdrawMethods:    []string{"paypal", "usdt"},
	})
}

// NormalizePayoutSetting 归一化收益结算配置
func NormalizePayoutSetting(setting PayoutSetting) PayoutSetting {
	setting.MinWithdrawAmount = roundPayoutAmount(setting.MinWithdrawAmount)
	if setting.MinWithdrawAmount < payoutMinWithdrawAmountMin {
		setting.MinWithdrawAmount = payoutMinWithdrawAmountMin
	}

	if setting.MonthlyWithdrawals < payoutMonthlyWithdrawalsMin {
		setting.MonthlyWithdrawals = payoutMonthlyWithdrawalsMin
	}
	if setting.MonthlyWithdrawals > payoutMonthlyWithdrawalsMax {
		setting.MonthlyWithdrawals = payoutMonthlyWithdrawalsMax
	}

	setting.ReferralRate = roundPayoutRate(setting.ReferralRate)
	if setting.ReferralRate < payoutReferralRateMin {
		setting.ReferralRate = payoutReferralRateMin
	}
	if setting.ReferralRate > payoutReferralRateMax {
		setting.ReferralRate = payoutReferralRateMax
	}

	setting.Currency = strings.ToUpper(strings.TrimSpace(setting.Currency))
	if setting.Currency == "" {
		setting.Currency = constants.SiteCurrencyDefault
	}

	setting.WithdrawMethods = normalizePayoutWithdrawMethods(setting.WithdrawMethods)
	return setting
}

// ValidatePayoutSetting 校验收益结算配置
func ValidatePayoutSetting(setting PayoutSetting) error {
	normalized := NormalizePayoutSetting(setting)
	if normalized.MinWithdrawAmount < payoutMinWithdrawAmountMin {
		return fmt.Errorf("%w: 最低提现金额不能小于 0", ErrPayoutConfigInvalid)
	}
	if normalized.MonthlyWithdrawals < payoutMonthlyWithdrawalsMin || normalized.MonthlyWithdrawals > payoutMonthlyWithdrawalsMax {
		return fmt.Errorf("%w: 月度提现次数必须在 1-1000 之间", ErrPayoutConfigInvalid)
	}
	if normalized.ReferralRate < payoutReferralRateMin || normalized.ReferralRate > payoutReferralRateMax {
		return fmt.Errorf("%w: 推荐佣金比例必须在 0-1 之间", ErrPayoutConfigInvalid)
	}
	if len(normalized.WithdrawMethods) == 0 {
		return fmt.Errorf("%w: 至少配置一种提现方式", ErrPayoutConfigInvalid)
	}
	return nil
}

// ToMap 转换为 settings 存储结构
func (s PayoutSetting) ToMap() map[string]interface{} {
	return PayoutSettingToMap(s)
}

// PayoutSettingToMap 将收益结算配置转换为 settings 存储结构
func PayoutSettingToMap(setting PayoutSetting) map[string]interface{} {
	normalized := NormalizePayoutSetting(setting)
	return map[string]interface{}{
		"min_withdraw_amount": normalized.MinWithdrawAmount,
		"monthly_withdrawals": normalized.MonthlyWithdrawals,
		"referral_rate":       normalized.ReferralRate,
		"currency":            normalized.Currency,
		"withdraw_methods":    cloneStringSlice(normalized.WithdrawMethods),
	}
}

func payoutSettingFromJSON(raw models.JSON, fallback PayoutSetting) PayoutSetting {
	result := fallback

	if amountRaw, ok := raw["min_withdraw_amount"]; ok {
		if parsed, err := parseSettingFloat(amountRaw); err == nil {
			result.MinWithdrawAmount = parsed
		}
	}
	if monthlyRaw, ok := raw["monthly_withdrawals"]; ok {
		if parsed, err := parseSettingInt(monthlyRaw); err == nil {
			result.MonthlyWithdrawals = parsed
		}
	}
	if rateRaw, ok := raw["referral_rate"]; ok {
		if parsed, err := parseSettingFloat(rateRaw); err == nil {
			result.ReferralRate = parsed
		}
	}
	if currencyRaw, ok := raw["currency"]; ok {
		result.Currency = normalizeSettingText(currencyRaw)
	}
	if methodsRaw, ok := raw["withdraw_methods"]; ok {
		result.WithdrawMethods = normalizeSettingStringList(methodsRaw)
	}

	return NormalizePayoutSetting(result)
}

func normalizePayoutSettingMap(value map[string]interface{}) models.JSON {
	setting := payoutSettingFromJSON(models.JSON(value), PayoutDefaultSetting())
	return models.JSON(PayoutSettingToMap(setting))
}

// GetPayoutSetting 获取收益结算设置（优先 settings，空时回退默认）
func (s *SettingService) GetPayoutSetting() (PayoutSetting, error) {
	fallback := PayoutDefaultSetting()
	if s == nil {
		return fallback, nil
	}

	value, err := s.GetByKey(constants.SettingKeyPayoutConfig)
	if err != nil {
		return fallback, err
	}
	if value == nil {
		return fallback, nil
	}
	return payoutSettingFromJSON(value, fallback), nil
}

// UpdatePayoutSetting 更新收益结算设置
func (s *SettingService) UpdatePayoutSetting(setting PayoutSetting) (PayoutSetting, error) {
	normalized := NormalizePayoutSetting(setting)
	if err := ValidatePayoutSetting(normalized); err != nil {
		return PayoutDefaultSetting(), err
	}
	if _, err := s.Update(constants.SettingKeyPayoutConfig, PayoutSettingToMap(normalized)); err != nil {
		return PayoutDefaultSetting(), err
	}
	return normalized, nil
}

func roundPayoutAmount(value float64) float64 {
	return math.Round(value*100) / 100
}

func roundPayoutRate(value float64) float64 {
	return math.Round(value*10000) / 10000
}

func normalizePayoutWithdrawMethods(methods []string) []string {
	if len(methods) == 0 {
		return []string{}
	}

	result := make([]string, 0, len(methods))
	seen := make(map[string]struct{}, len(methods))
	for _, raw := range methods {
		value := normalizeSettingTextWithRuneLimit(raw, payoutWithdrawMethodMaxRune)
		if value == "" {
			continue
		}
		key := strings.ToLower(value)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, value)
		if len(result) >= payoutWithdrawMethodsMaxSize {
			break
		}
	}
	return result
}
