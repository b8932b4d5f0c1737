package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/constants"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/http/response"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/repository"
	"github.com/Mik3xTreezy/Vault-Lab-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// GetAdminWithdrawals 获取提现申请列表 (Admin)
func (h *Handler) GetAdminWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	requestedFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("requested_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	requestedTo, err := parseTimeNullable(strings.TrimSpace(c.Query("requested_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	withdrawals, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        uint(userID),
		Status:        strings.TrimSpace(c.Query("status")),
		WithdrawalNo:  strings.TrimSpace(c.Query("withdrawal_no")),
		RequestedFrom: requestedFrom,
		RequestedTo:   requestedTo,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.withdrawal_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, withdrawals, pagination)
}

// GetAdminWithdrawal 获取提现申请详情 (Admin)
func (h *Handler) GetAdminWithdrawal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	withdrawal, err := h.WithdrawalService.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.withdrawal_fetch_failed", err)
		return
	}
	if withdrawal == nil {
		respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
		return
	}

	response.Success(c, withdrawal)
}

// ReviewWithdrawalRequest 审核提现请求
type ReviewWithdrawalRequest struct {
	Action string `json:"action" binding:"required"`
	Note   string `json:"note"`
}

// ReviewWithdrawal 审核提现申请（approve/reject，拒绝时退回冻结金额）
func (h *Handler) ReviewWithdrawal(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ReviewWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	if action != constants.WithdrawalActionApprove && action != constants.WithdrawalActionReject {
		respondError(c, response.CodeBadRequest, "error.withdrawal_action_invalid", nil)
		return
	}

	withdrawal, err := h.WithdrawalService.Review(id, action, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrWithdrawalNotFound):
			respondError(c, response.CodeNotFound, "error.withdrawal_not_found", nil)
		case errors.Is(err, service.ErrWithdrawalAlreadyReviewed):
			respondError(c, response.CodeConflict, "error.withdrawal_already_reviewed", nil)
		default:
			respondError(c, response.CodeInternal, "error.withdrawal_review_failed", err)
		}
		return
	}

	response.Success(c, withdrawal)
}
