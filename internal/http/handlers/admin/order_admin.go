package admin

import (
	"strings"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/http/handlers/shared"
	"github.com/orderflow-next/internal/http/response"
	"github.com/orderflow-next/internal/repository"

	"github.com/gin-gonic/gin"
)

// UpdateOrderStatusRequest 员工设置订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListOrders 门店订单列表
func (h *Handler) ListOrders(c *gin.Context) {
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
	var employeeID uint
	if raw := strings.TrimSpace(c.Query("employee_id")); raw != "" {
		if parsed, ok := shared.ParseUintParam(raw); ok {
			employeeID = parsed
		}
	}

	orders, total, err := h.OrderQueryService.List(c.Request.Context(), repository.OrderListFilter{
		Page:        page,
		PageSize:    pageSize,
		StoreID:     storeID,
		EmployeeID:  employeeID,
		Status:      constants.OrderStatus(strings.TrimSpace(c.Query("status"))),
		OrderCode:   strings.TrimSpace(c.Query("order_code")),
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 门店订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	_, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParseUintParam(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "order_id_invalid", nil)
		return
	}

	order, err := h.OrderQueryService.GetForStaff(c.Request.Context(), orderID, storeID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, order)
}

// UpdateOrderStatus 员工直接设置订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	staffID, storeID, ok := getStaffScope(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParseUintParam(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "order_id_invalid", nil)
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad_request", err)
		return
	}

	ctx := c.Request.Context()
	// 只能操作本门店订单
	if _, err := h.OrderQueryService.GetForStaff(ctx, orderID, storeID); err != nil {
		respondServiceError(c, err)
		return
	}
	order, err := h.OrderLifecycleService.StaffSetStatus(ctx, orderID, constants.OrderStatus(strings.TrimSpace(req.Status)), staffID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, order)
}
