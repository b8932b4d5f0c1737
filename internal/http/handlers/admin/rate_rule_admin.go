package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// RateRuleItem 单条费率规则
type RateRuleItem struct {
	Device  string  `json:"device"`
	Country string  `json:"country" binding:"required"`
	TaskID  uint    `json:"task_id" binding:"required"`
	CPM     float64 `json:"cpm"`
}

// UpsertRateRulesRequest 批量写入费率规则请求
type UpsertRateRulesRequest struct {
	Rules []RateRuleItem `json:"rules" binding:"required"`
}

// GetAdminRateRules 获取费率规则列表 (Admin)
func (h *Handler) GetAdminRateRules(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	taskID, _ := strconv.ParseUint(c.Query("task_id"), 10, 64)

	rules, total, err := h.RateService.ListRules(repository.RateRuleListFilter{
		Page:     page,
		PageSize: pageSize,
		TaskID:   uint(taskID),
		Device:   strings.TrimSpace(c.Query("device")),
		Country:  strings.TrimSpace(c.Query("country")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.rate_rule_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, rules, pagination)
}

// UpsertRateRules 批量写入费率规则
func (h *Handler) UpsertRateRules(c *gin.Context) {
	var req UpsertRateRulesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if len(req.Rules) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	inputs := make([]service.RateRuleInput, 0, len(req.Rules))
	for _, rule := range req.Rules {
		inputs = append(inputs, service.RateRuleInput{
			Device:  rule.Device,
			Country: rule.Country,
			TaskID:  rule.TaskID,
			CPM:     models.Money{Decimal: decimal.NewFromFloat(rule.CPM)},
		})
	}

	rules, err := h.RateService.UpsertRules(c.Request.Context(), inputs)
	if err != nil {
		if errors.Is(err, service.ErrRateRuleInvalid) {
			respondError(c, response.CodeBadRequest, "error.rate_rule_invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.rate_rule_save_failed", err)
		return
	}

	response.Success(c, gin.H{"count": len(rules), "rules": rules})
}
