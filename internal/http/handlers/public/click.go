package public

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// RecordClickRequest 记录点击请求
type RecordClickRequest struct {
	LockerID  uint   `json:"locker_id" binding:"required"`
	TaskID    uint   `json:"task_id" binding:"required"`
	VisitorID string `json:"visitor_id"`
	Device    string `json:"device"`
	Country   string `json:"country"`
}

// RecordClick 记录一次解锁点击并返回跳转链接
func (h *Handler) RecordClick(c *gin.Context) {
	var req RecordClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.ClickService.Record(service.ClickInput{
		LockerID:  req.LockerID,
		TaskID:    req.TaskID,
		VisitorID: req.VisitorID,
		Device:    req.Device,
		Country:   resolveClickCountry(c, req.Country),
		ClientIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		respondClickError(c, err)
		return
	}

	response.Success(c, gin.H{
		"click_id":     result.Click.ClickID,
		"redirect_url": result.RedirectURL,
		"reused":       result.Reused,
	})
}

// ClickRedirect 记录点击后 302 跳转到广告主落地页
func (h *Handler) ClickRedirect(c *gin.Context) {
	lockerID, _ := strconv.ParseUint(c.Query("locker_id"), 10, 64)
	taskID, _ := strconv.ParseUint(c.Query("task_id"), 10, 64)
	if lockerID == 0 || taskID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	result, err := h.ClickService.Record(service.ClickInput{
		LockerID:  uint(lockerID),
		TaskID:    uint(taskID),
		VisitorID: strings.TrimSpace(c.Query("visitor_id")),
		Device:    c.Query("device"),
		Country:   resolveClickCountry(c, c.Query("country")),
		ClientIP:  c.ClientIP(),
		UserAgent: c.GetHeader("User-Agent"),
	})
	if err != nil {
		respondClickError(c, err)
		return
	}

	c.Redirect(http.StatusFound, result.RedirectURL)
}

func respondClickError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLockerNotFound):
		respondError(c, response.CodeNotFound, "error.locker_not_found", nil)
	case errors.Is(err, service.ErrTaskNotFound):
		respondError(c, response.CodeNotFound, "error.task_not_found", nil)
	default:
		respondError(c, response.CodeInternal, "error.click_record_failed", err)
	}
}

// resolveClickCountry 优先取请求参数，缺省回退 CDN 注入的地理头
func resolveClickCountry(c *gin.Context, country string) string {
	country = strings.TrimSpace(country)
	if country != "" {
		return country
	}
	if v := strings.TrimSpace(c.GetHeader("CF-IPCountry")); v != "" {
		return v
	}
	return strings.TrimSpace(c.GetHeader("X-Country-Code"))
}
