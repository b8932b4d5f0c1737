package admin

import (
	"strconv"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/models"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"

	"github.com/gin-gonic/gin"
)

// AdminUserView 管理端用户响应结构
type AdminUserView struct {
	models.User
	Balance models.Money `json:"balance"`
}

// GetAdminUsers 获取用户列表 (Admin)
func (h *Handler) GetAdminUsers(c *gin.Context) {
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

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("search")),
		Status:      strings.TrimSpace(c.Query("status")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}

	userIDs := make([]uint, 0, len(users))
	for _, user := range users {
		userIDs = append(userIDs, user.ID)
	}
	balances, err := h.LedgerService.GetBalances(userIDs)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}

	items := make([]AdminUserView, 0, len(users))
	for _, user := range users {
		items = append(items, AdminUserView{
			User:    user,
			Balance: balances[user.ID],
		})
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, items, pagination)
}

// GetAdminUser 获取用户详情 (Admin)
func (h *Handler) GetAdminUser(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}

	user, err := h.UserRepo.GetByID(uint(rawID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}

	balance, err := h.LedgerService.GetBalance(user.ID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}

	response.Success(c, AdminUserView{User: *user, Balance: balance})
}

// UpdateUserStatusRequest 更新用户状态请求
type UpdateUserStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateAdminUserStatus 更新用户状态
func (h *Handler) UpdateAdminUserStatus(c *gin.Context) {
	rawID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || rawID == 0 {
		respondError(c, response.CodeBadRequest, "error.user_id_invalid", nil)
		return
	}

	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	status, ok := normalizeUserStatus(req.Status)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		return
	}

	user, err := h.UserRepo.GetByID(uint(rawID))
	if err != nil {
		respondError(c, response.CodeInternal, "error.user_fetch_failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		return
	}

	user.Status = status
	if err := h.UserRepo.Update(user); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}

	response.Success(c, user)
}

// BatchUpdateUserStatusRequest 批量更新用户状态请求
type BatchUpdateUserStatusRequest struct {
	UserIDs []uint `json:"user_ids" binding:"required"`
	Status  string `json:"status" binding:"required"`
}

// BatchUpdateAdminUserStatus 批量更新用户状态
func (h *Handler) BatchUpdateAdminUserStatus(c *gin.Context) {
	var req BatchUpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if len(req.UserIDs) == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	status, ok := normalizeUserStatus(req.Status)
	if !ok {
		respondError(c, response.CodeBadRequest, "error.user_status_invalid", nil)
		return
	}

	if err := h.UserRepo.BatchUpdateStatus(req.UserIDs, status); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	}

	response.Success(c, gin.H{"updated": len(req.UserIDs)})
}

func normalizeUserStatus(status string) (string, bool) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case constants.UserStatusActive, constants.UserStatusDisabled:
		return status, true
	default:
		return "", false
	}
}
