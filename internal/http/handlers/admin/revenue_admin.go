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

// GetAdminRevenueEvents 获取收益事件列表 (Admin)
func (h *Handler) GetAdminRevenueEvents(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	publisherID, _ := strconv.ParseUint(c.Query("publisher_id"), 10, 64)
	taskID, _ := strconv.ParseUint(c.Query("task_id"), 10, 64)

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

	events, total, err := h.PostbackService.ListEvents(repository.RevenueEventListFilter{
		Page:        page,
		PageSize:    pageSize,
		PublisherID: uint(publisherID),
		TaskID:      uint(taskID),
		Source:      strings.TrimSpace(c.Query("source")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
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

// ManualCreditRequest 人工补单请求
type ManualCreditRequest struct {
	PublisherID uint    `json:"publisher_id" binding:"required"`
	TaskID      uint    `json:"task_id" binding:"required"`
	Amount      float64 `json:"amount" binding:"required"`
	EventID     string  `json:"event_id"`
	Remark      string  `json:"remark"`
}

// ManualCredit 人工补单入账
func (h *Handler) ManualCredit(c *gin.Context) {
	var req ManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	event, err := h.PostbackService.ManualCredit(
		req.PublisherID,
		req.TaskID,
		models.Money{Decimal: decimal.NewFromFloat(req.Amount)},
		req.EventID,
		req.Remark,
	)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAmount):
			respondError(c, response.CodeBadRequest, "error.amount_invalid", nil)
		case errors.Is(err, service.ErrDuplicateEvent):
			respondError(c, response.CodeConflict, "error.revenue_event_duplicate", nil)
		default:
			respondError(c, response.CodeInternal, "error.manual_credit_failed", err)
		}
		return
	}

	response.Success(c, event)
}

// GetAdminLedgerTransactions 获取余额流水列表 (Admin)
func (h *Handler) GetAdminLedgerTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	transactions, total, err := h.LedgerService.ListTransactions(repository.LedgerTransactionListFilter{
		Page:      page,
		PageSize:  pageSize,
		UserID:    uint(userID),
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

// ReconcileLedgerRequest 对账请求
type ReconcileLedgerRequest struct {
	UserID uint `json:"user_id"`
}

// ReconcileLedger 触发余额与流水对账。user_id 为 0 时全量对账。
func (h *Handler) ReconcileLedger(c *gin.Context) {
	var req ReconcileLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	if req.UserID != 0 {
		result, err := h.LedgerService.Reconcile(req.UserID)
		if err != nil {
			respondError(c, response.CodeInternal, "error.reconcile_failed", err)
			return
		}
		response.Success(c, result)
		return
	}

	mismatches, err := h.LedgerService.ReconcileAll(0)
	if err != nil {
		respondError(c, response.CodeInternal, "error.reconcile_failed", err)
		return
	}
	response.Success(c, gin.H{
		"mismatch_count": len(mismatches),
		"mismatches":     mismatches,
	})
}
