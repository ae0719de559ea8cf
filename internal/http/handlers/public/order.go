package public

import (
	"strings"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/http/handlers/shared"
	"github.com/orderflow-next/internal/http/response"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/service"

	"github.com/gin-gonic/gin"
)

// OrderItemRequest 订单项请求
type OrderItemRequest struct {
	ProductID uint         `json:"product_id" binding:"required"`
	Quantity  int          `json:"quantity" binding:"required"`
	UnitPrice models.Money `json:"unit_price"`
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	StoreID       uint               `json:"store_id" binding:"required"`
	PaymentMethod string             `json:"payment_method"`
	Receiver      string             `json:"receiver"`
	Phone         string             `json:"phone"`
	Address       string             `json:"address"`
	Items         []OrderItemRequest `json:"items" binding:"required"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad_request", err)
		return
	}

	items := make([]service.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order, err := h.OrderCreateService.CreateOrder(c.Request.Context(), service.CreateOrderInput{
		CustomerID:    customerID,
		StoreID:       req.StoreID,
		PaymentMethod: req.PaymentMethod,
		Receiver:      req.Receiver,
		Phone:         req.Phone,
		Address:       req.Address,
		Items:         items,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 我的订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	page, pageSize := shared.ParsePage(c.Query("page"), c.Query("page_size"))
	status := constants.OrderStatus(strings.TrimSpace(c.Query("status")))

	orders, total, err := h.OrderQueryService.ListForCustomer(c.Request.Context(), customerID, status, page, pageSize)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParseUintParam(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "order_id_invalid", nil)
		return
	}

	order, err := h.OrderQueryService.GetForCustomer(c.Request.Context(), orderID, customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, order)
}

// CancelOrder 顾客取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParseUintParam(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "order_id_invalid", nil)
		return
	}

	order, err := h.OrderLifecycleService.Cancel(c.Request.Context(), orderID, customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, order)
}

// ConfirmReceipt 顾客确认收货
func (h *Handler) ConfirmReceipt(c *gin.Context) {
	customerID, ok := getCustomerID(c)
	if !ok {
		return
	}
	orderID, ok := shared.ParseUintParam(c.Param("id"))
	if !ok {
		respondError(c, response.CodeBadRequest, "order_id_invalid", nil)
		return
	}

	order, err := h.OrderLifecycleService.ConfirmReceipt(c.Request.Context(), orderID, customerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	response.Success(c, order)
}
