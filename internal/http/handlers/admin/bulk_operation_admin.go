package admin

import (
	"strconv"
	"strings"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/http/handlers/shared"
	"github.com/orderflow-next/internal/http/response"
	"github.com/orderflow-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// BulkTransitionRequest 批量流转请求
type BulkTransitionRequest struct {
	Action string `json:"action" binding:"required"`
}

// ApplyBulkTransition 门店批量流转
func (h *Handler) ApplyBulkTransition(c *gin.Context) {
	staffID, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}
	var req BulkTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad_request", err)
		return
	}

	result, err := h.BulkTransitionService.Apply(c.Request.Context(), storeID, constants.BulkActionType(strings.TrimSpace(req.Action)), staffID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// ListBulkOperations 批量操作记录列表
func (h *Handler) ListBulkOperations(c *gin.Context) {
	_, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}

	page, pageSize := parsePage(c)

	filter := repository.BulkOperationListFilter{
		Page:       page,
		PageSize:   pageSize,
		StoreID:    storeID,
		ActionType: constants.BulkActionType(strings.TrimSpace(c.Query("action_type"))),
	}
	if raw := strings.TrimSpace(c.Query("performed_by")); raw != "" {
		if parsed, ok := shared.ParseUintParam(raw); ok {
			filter.PerformedBy = parsed
		}
	}
	if raw := strings.TrimSpace(c.Query("rolled_back")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(c, response.CodeBadRequest, "bad_request", err)
			return
		}
		filter.RolledBack = &parsed
	}

	ops, total, err := h.BulkOperationQuery.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithPage(c, ops, response.BuildPagination(page, pageSize, total))
}

// GetBulkOperation 批量操作详情（含明细）
func (h *Handler) GetBulkOperation(c *gin.Context) {
	_, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}
	operationID, ok := shared.ParseUintParam(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "operation_id_invalid", nil)
		return
	}

	op, err := h.BulkOperationQuery.Get(c.Request.Context(), operationID, storeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, op)
}

// RollbackLastBulkOperation 回滚本人在门店内最近一次批量操作
func (h *Handler) RollbackLastBulkOperation(c *gin.Context) {
	staffID, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}

	result, err := h.RollbackService.RollbackLast(c.Request.Context(), storeID, staffID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, result)
}

// RollbackBulkOperation 按 ID 回滚批量操作
func (h *Handler) RollbackBulkOperation(c *gin.Context) {
	staffID, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}
	operationID, ok := shared.ParseUintParam(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "operation_id_invalid", nil)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.BulkOperationQuery.Get(ctx, operationID, storeID); err != nil {
		respondServiceError(c, err)
		return
	}
	result, err := h.RollbackService.RollbackByID(ctx, operationID, staffID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, result)
}
