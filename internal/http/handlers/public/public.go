package public

import (
	"time"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/cache"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"

	"github.com/gin-gonic/gin"
)

const (
	publicConfigCacheKey = "public:config"
	publicConfigCacheTTL = 60 * time.Second
)

// GetConfig 获取全局配置
func (h *Handler) GetConfig(c *gin.Context) {
	// 默认配置
	defaults := map[string]interface{}{
		"languages": constants.SupportedLocales,
		"currency":  constants.SiteCurrencyDefault,
	}

	var cached map[string]interface{}
	if hit, err := cache.GetJSON(c.Request.Context(), publicConfigCacheKey, &cached); err == nil && hit {
		response.Success(c, cached)
		return
	}

	data, err := h.SettingService.GetConfig(defaults)
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}

	payout, err := h.SettingService.GetPayoutSetting()
	if err != nil {
		respondError(c, response.CodeInternal, "error.config_fetch_failed", err)
		return
	}
	data["payout"] = map[string]interface{}{
		"min_withdraw_amount": payout.MinWithdrawAmount,
		"monthly_withdrawals": payout.MonthlyWithdrawals,
		"withdraw_methods":    payout.WithdrawMethods,
		"currency":            payout.Currency,
	}

	_ = cache.SetJSON(c.Request.Context(), publicConfigCacheKey, data, publicConfigCacheTTL)
	response.Success(c, data)
}
