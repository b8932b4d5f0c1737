package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// LockerRequest 创建/更新解锁页请求
type LockerRequest struct {
	PublisherID uint   `json:"publisher_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Status      string `json:"status"`
}

// GetAdminLockers 获取解锁页列表 (Admin)
func (h *Handler) GetAdminLockers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	publisherID, _ := strconv.ParseUint(c.Query("publisher_id"), 10, 64)

	lockers, total, err := h.LockerService.List(repository.LockerListFilter{
		Page:        page,
		PageSize:    pageSize,
		PublisherID: uint(publisherID),
		Status:      strings.TrimSpace(c.Query("status")),
		Keyword:     strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.locker_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, lockers, pagination)
}

// GetAdminLocker 获取解锁页详情 (Admin)
func (h *Handler) GetAdminLocker(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	locker, err := h.LockerService.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.locker_fetch_failed", err)
		return
	}
	if locker == nil {
		respondError(c, response.CodeNotFound, "error.locker_not_found", nil)
		return
	}

	response.Success(c, locker)
}

// CreateLocker 创建解锁页
func (h *Handler) CreateLocker(c *gin.Context) {
	var req LockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locker, err := h.LockerService.Create(service.LockerInput{
		PublisherID: req.PublisherID,
		Title:       req.Title,
		Status:      req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeBadRequest, "error.user_not_found", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeBadRequest, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.locker_create_failed", err)
		}
		return
	}

	response.Success(c, locker)
}

// UpdateLocker 更新解锁页
func (h *Handler) UpdateLocker(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req LockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locker, err := h.LockerService.Update(id, service.LockerInput{
		PublisherID: req.PublisherID,
		Title:       req.Title,
		Status:      req.Status,
	})
	if err != nil {
		if errors.Is(err, service.ErrLockerNotFound) {
			respondError(c, response.CodeNotFound, "error.locker_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.locker_update_failed", err)
		return
	}

	response.Success(c, locker)
}

// DeleteLocker 删除解锁页（软删除）
func (h *Handler) DeleteLocker(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.LockerService.Delete(id); err != nil {
		if errors.Is(err, service.ErrLockerNotFound) {
			respondError(c, response.CodeNotFound, "error.locker_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.locker_delete_failed", err)
		return
	}

	response.Success(c, nil)
}
