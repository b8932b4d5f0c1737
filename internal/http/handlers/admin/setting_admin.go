package admin

import (
	"errors"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/cache"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

const publicConfigCacheKey = "public:config"

// GetSettings 获取设置
func (h *Handler) GetSettings(c *gin.Context) {
	key := c.DefaultQuery("key", constants.SettingKeySiteConfig)

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	if value == nil {
		response.Success(c, gin.H{})
		return
	}

	response.Success(c, value)
}

// UpdateSettingsRequest 更新设置请求
type UpdateSettingsRequest struct {
	Key   string                 `json:"key" binding:"required"`
	Value map[string]interface{} `json:"value" binding:"required"`
}

// UpdateSettings 更新设置
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	value, err := h.SettingService.Update(req.Key, req.Value)
	if err != nil {
		if errors.Is(err, service.ErrPayoutConfigInvalid) {
			respondError(c, response.CodeBadRequest, "error.payout_config_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	if req.Key == constants.SettingKeySiteConfig {
		_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	}
	response.Success(c, value)
}

// GetPayoutSettings 获取提现配置
func (h *Handler) GetPayoutSettings(c *gin.Context) {
	setting, err := h.SettingService.GetPayoutSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.settings_fetch_failed", err)
		return
	}
	response.Success(c, setting.ToMap())
}

// UpdatePayoutSettingsRequest 更新提现配置请求
type UpdatePayoutSettingsRequest struct {
	MinWithdrawAmount  float64  `json:"min_withdraw_amount"`
	MonthlyWithdrawals int      `json:"monthly_withdrawals"`
	ReferralRate       float64  `json:"referral_rate"`
	Currency           string   `json:"currency"`
	WithdrawMethods    []string `json:"withdraw_methods"`
}

// UpdatePayoutSettings 更新提现配置
func (h *Handler) UpdatePayoutSettings(c *gin.Context) {
	var req UpdatePayoutSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	setting, err := h.SettingService.UpdatePayoutSetting(service.PayoutSetting{
		MinWithdrawAmount:  req.MinWithdrawAmount,
		MonthlyWithdrawals: req.MonthlyWithdrawals,
		ReferralRate:       req.ReferralRate,
		Currency:           req.Currency,
		WithdrawMethods:    req.WithdrawMethods,
	})
	if err != nil {
		if errors.Is(err, service.ErrPayoutConfigInvalid) {
			respondErrorWithMsg(c, response.CodeBadRequest, err.Error(), nil)
			return
		}
		respondError(c, response.CodeInternal, "error.settings_save_failed", err)
		return
	}

	response.Success(c, setting.ToMap())
}
