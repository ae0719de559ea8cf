package admin

import (
	"strings"

	"github.com/orderflow-next/internal/http/handlers/shared"
	"github.com/orderflow-next/internal/http/response"
	"github.com/orderflow-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListSystemLogs 门店系统日志列表
func (h *Handler) ListSystemLogs(c *gin.Context) {
	_, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}

	page, pageSize := parsePage(c)

	createdFrom, err := shared.ParseTimeNullable(c.Query("created_from"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad_request", err)
		return
	}
	createdTo, err := shared.ParseTimeNullable(c.Query("created_to"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "bad_request", err)
		return
	}

	filter := repository.SystemLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		StoreID:     storeID,
		Action:      strings.TrimSpace(c.Query("action")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if parsed, ok := shared.ParseUintParam(c.Query("actor_id")); ok {
		filter.ActorID = parsed
	}
	if parsed, ok := shared.ParseUintParam(c.Query("order_id")); ok {
		filter.OrderID = parsed
	}

	logs, total, err := h.SystemLogService.List(c.Request.Context(), filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithPage(c, logs, response.BuildPagination(page, pageSize, total))
}
