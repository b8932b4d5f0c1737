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

// TaskRequest 创建/更新任务请求
type TaskRequest struct {
	Title         string  `json:"title" binding:"required"`
	AdvertiserURL string  `json:"advertiser_url" binding:"required"`
	Tier1CPM      float64 `json:"tier1_cpm"`
	Tier2CPM      float64 `json:"tier2_cpm"`
	Tier3CPM      float64 `json:"tier3_cpm"`
	Status        string  `json:"status"`
}

func (r TaskRequest) toInput() service.TaskInput {
	return service.TaskInput{
		Title:         r.Title,
		AdvertiserURL: r.AdvertiserURL,
		Tier1CPM:      models.Money{Decimal: decimal.NewFromFloat(r.Tier1CPM)},
		Tier2CPM:      models.Money{Decimal: decimal.NewFromFloat(r.Tier2CPM)},
		Tier3CPM:      models.Money{Decimal: decimal.NewFromFloat(r.Tier3CPM)},
		Status:        r.Status,
	}
}

// GetAdminTasks 获取任务列表 (Admin)
func (h *Handler) GetAdminTasks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	tasks, total, err := h.TaskService.List(repository.TaskListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.task_fetch_failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, tasks, pagination)
}

// GetAdminTask 获取任务详情 (Admin)
func (h *Handler) GetAdminTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	task, err := h.TaskService.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "error.task_fetch_failed", err)
		return
	}
	if task == nil {
		respondError(c, response.CodeNotFound, "error.task_not_found", nil)
		return
	}

	response.Success(c, task)
}

// CreateTask 创建任务
func (h *Handler) CreateTask(c *gin.Context) {
	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	task, err := h.TaskService.Create(req.toInput())
	if err != nil {
		respondError(c, response.CodeInternal, "error.task_create_failed", err)
		return
	}

	response.Success(c, task)
}

// UpdateTask 更新任务
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	task, err := h.TaskService.Update(id, req.toInput())
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, response.CodeNotFound, "error.task_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.task_update_failed", err)
		return
	}

	response.Success(c, task)
}

// DeleteTask 删除任务（软删除，同时清理费率规则）
func (h *Handler) DeleteTask(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.TaskService.Delete(id); err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			respondError(c, response.CodeNotFound, "error.task_not_found", nil)
			return
		}
		respondError(c, response.CodeInternal, "error.task_delete_failed", err)
		return
	}

	response.Success(c, nil)
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
