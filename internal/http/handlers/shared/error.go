package shared

import (
	"errors"

	"github.com/orderflow-next/internal/http/response"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回错误响应，并在有原始错误时记录日志。
// 参数错误只记 warn，其余按 error 记录。
func RespondError(c *gin.Context, code int, msg string, err error) {
	if err != nil {
		log := RequestLog(c)
		if code < response.CodeInternal {
			log.Warnw("handler_request_rejected", "code", code, "message", msg, "error", err)
		} else {
			log.Errorw("handler_error", "code", code, "message", msg, "error", err)
		}
	}
	response.Error(c, code, msg)
}

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
}

var orderErrorRules = []mappedHandlerError{
	{target: service.ErrOrderNotFound, code: response.CodeNotFound},
	{target: service.ErrBulkOperationNotFound, code: response.CodeNotFound},
	{target: service.ErrOrderForbidden, code: response.CodeForbidden},
	{target: service.ErrOrderIllegalTransition, code: response.CodeConflict},
	{target: service.ErrOrderAlreadyPaid, code: response.CodeConflict},
	{target: service.ErrBulkAlreadyRolledBack, code: response.CodeConflict},
	{target: service.ErrNothingToRollBack, code: response.CodeConflict},
	{target: service.ErrInsufficientStock, code: response.CodeConflict},
	{target: service.ErrOrderStatusInvalid, code: response.CodeBadRequest},
	{target: service.ErrBulkActionInvalid, code: response.CodeBadRequest},
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest},
}

// RespondServiceError 将订单核心的失败映射为响应码，msg 为稳定原因码
func RespondServiceError(c *gin.Context, err error) {
	var typed *service.OrderError
	if !errors.As(err, &typed) {
		RespondError(c, response.CodeInternal, string(service.CodePersistenceFailure), err)
		return
	}
	detail := gin.H{"error_code": typed.Code}
	if typed.OrderID != 0 {
		detail["order_id"] = typed.OrderID
	}
	if typed.OperationID != 0 {
		detail["operation_id"] = typed.OperationID
	}
	if typed.ProductID != 0 {
		detail["product_id"] = typed.ProductID
	}
	for _, rule := range orderErrorRules {
		if errors.Is(err, rule.target) {
			response.ErrorWithData(c, rule.code, string(typed.Code), detail)
			return
		}
	}
	RequestLog(c).Errorw("handler_error",
		"code", response.CodeInternal,
		"error_code", typed.Code,
		"error", typed.Cause(),
	)
	response.ErrorWithData(c, response.CodeInternal, string(typed.Code), detail)
}
