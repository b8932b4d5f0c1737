package public

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

// GetMyBalance 获取当前用户余额
func (h *Handler) GetMyBalance(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	balance, err := h.LedgerService.GetBalance(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.balance_fetch_failed", err)
		return
	}

	response.Success(c, gin.H{"balance": balance})
}

// ListMyTransactions 获取当前用户余额流水
func (h *Handler) ListMyTransactions(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	transactions, total, err := h.LedgerService.ListTransactions(repository.LedgerTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    id,
		Type:      strings.TrimSpace(c.Query("type")),
		Direction: strings.TrimSpace(c.Query("direction")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.transaction_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, transactions, pagination)
}

// ListMyRevenueEvents 获取当前用户收益事件
func (h *Handler) ListMyRevenueEvents(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	events, total, err := h.PostbackService.ListEvents(repository.RevenueEventListFilter{
		Page:        page,
		PageSize:    pageSize,
		PublisherID: id,
		Source:      strings.TrimSpace(c.Query("source")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.revenue_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, events, pagination)
}

// ListMyReferrals 获取当前用户发展的推荐关系
func (h *Handler) ListMyReferrals(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	referrals, total, err := h.ReferralService.ListByReferrer(id, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "error.referral_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, referrals, pagination)
}

// ListMyCommissions 获取当前用户的推荐佣金记录
func (h *Handler) ListMyCommissions(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	commissions, total, err := h.ReferralService.ListCommissions(repository.ReferralCommissionListFilter{
		Page:       page,
		PageSize:   pageSize,
		ReferrerID: id,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.referral_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, commissions, pagination)
}

// CreateWithdrawalRequest 提现申请请求
type CreateWithdrawalRequest struct {
	Amount  float64 `json:"amount" binding:"required"`
	Method  string  `json:"method" binding:"required"`
	Address string  `json:"address" binding:"required"`
}

// CreateWithdrawal 发起提现申请
func (h *Handler) CreateWithdrawal(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	withdrawal, err := h.WithdrawalService.Request(service.WithdrawalInput{
		UserID:  id,
		Amount:  models.Money{Decimal: decimal.NewFromFloat(req.Amount)},
		Method:  req.Method,
		Address: req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.withdrawal_amount_invalid", nil)
		case errors.Is(err, service.ErrBelowMinimum):
			respondError(c, response.CodeBadRequest, "error.withdrawal_below_minimum", nil)
		case errors.Is(err, service.ErrInsufficientFunds):
			respondError(c, response.CodeBadRequest, "error.insufficient_funds", nil)
		case errors.Is(err, service.ErrWithdrawalMonthlyCapExceeded):
			respondError(c, response.CodeBadRequest, "error.withdrawal_monthly_cap", nil)
		default:
			respondError(c, response.CodeInternal, "error.withdrawal_create_failed", err)
		}
		return
	}

	response.Success(c, withdrawal)
}

// ListMyWithdrawals 获取当前用户提现记录
func (h *Handler) ListMyWithdrawals(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	withdrawals, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   id,
		Status:   strings.TrimSpace(c.Query("status")),
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

// ListMyLockers 获取当前用户的解锁页
func (h *Handler) ListMyLockers(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	lockers, total, err := h.LockerService.List(repository.LockerListFilter{
		Page:        page,
		PageSize:    pageSize,
		PublisherID: id,
		Status:      strings.TrimSpace(c.Query("status")),
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

// CreateLockerRequest 创建解锁页请求
type CreateLockerRequest struct {
	Title string `json:"title" binding:"required"`
}

// CreateMyLocker 创建当前用户的解锁页
func (h *Handler) CreateMyLocker(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req CreateLockerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	locker, err := h.LockerService.Create(service.LockerInput{
		PublisherID: id,
		Title:       req.Title,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "error.user_not_found", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeBadRequest, "error.user_disabled", nil)
		default:
			respondError(c, response.CodeInternal, "error.locker_create_failed", err)
		}
		return
	}

	response.Success(c, locker)
}
