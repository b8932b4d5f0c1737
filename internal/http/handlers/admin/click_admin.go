package admin

import (
	"strconv"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetAdminClicks 获取点击记录列表 (Admin)
func (h *Handler) GetAdminClicks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	taskID, _ := strconv.ParseUint(c.Query("task_id"), 10, 64)
	lockerID, _ := strconv.ParseUint(c.Query("locker_id"), 10, 64)
	publisherID, _ := strconv.ParseUint(c.Query("publisher_id"), 10, 64)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	clicks, total, err := h.ClickService.List(repository.ClickListFilter{
		Page:        page,
		PageSize:    pageSize,
		TaskID:      uint(taskID),
		LockerID:    uint(lockerID),
		PublisherID: uint(publisherID),
		Device:      strings.TrimSpace(c.Query("device")),
		Country:     strings.TrimSpace(c.Query("country")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.click_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, clicks, pagination)
}

// GetAdminPostbackAudits 获取回调审计列表 (Admin)
func (h *Handler) GetAdminPostbackAudits(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	audits, total, err := h.PostbackService.ListAudits(repository.PostbackAuditListFilter{
		Page:        page,
		PageSize:    pageSize,
		Result:      strings.TrimSpace(c.Query("result")),
		Keyword:     strings.TrimSpace(c.Query("search")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.postback_audit_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, audits, pagination)
}
