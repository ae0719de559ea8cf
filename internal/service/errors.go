package service

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode 对外稳定的失败原因码
type ErrorCode string

const (
	CodeNotFound           ErrorCode = "not_found"
	CodeForbidden          ErrorCode = "forbidden"
	CodeIllegalTransition  ErrorCode = "illegal_transition"
	CodeAlreadyPaid        ErrorCode = "already_paid"
	CodeInvalidStatus      ErrorCode = "invalid_status"
	CodeInvalidAction      ErrorCode = "invalid_action"
	CodeAlreadyRolledBack  ErrorCode = "already_rolled_back"
	CodeNothingToRollBack  ErrorCode = "nothing_to_roll_back"
	CodeInsufficientStock  ErrorCode = "insufficient_stock"
	CodeInvalidOrderItem   ErrorCode = "invalid_order_item"
	CodePersistenceFailure ErrorCode = "persistence_failure"
)

var (
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderForbidden         = errors.New("order belongs to another customer")
	ErrOrderIllegalTransition = errors.New("order status does not allow this transition")
	ErrOrderAlreadyPaid       = errors.New("paid order cannot be cancelled")
	ErrOrderStatusInvalid     = errors.New("unknown order status")
	ErrBulkActionInvalid      = errors.New("unknown bulk action")
	ErrBulkOperationNotFound  = errors.New("bulk operation not found")
	ErrBulkAlreadyRolledBack  = errors.New("bulk operation already rolled back")
	ErrNothingToRollBack      = errors.New("no bulk operation to roll back")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrInvalidOrderItem       = errors.New("invalid order item")
	ErrPersistence            = errors.New("persistence failure")
)

// OrderError 订单核心的类型化失败
// Error() 只输出原因码与相关 ID，底层数据库错误通过 Cause() 供日志使用。
type OrderError struct {
	Code        ErrorCode
	OrderID     uint
	OperationID uint
	ProductID   uint
	Err         error
	cause       error
}

func (e *OrderError) Error() string {
	if e == nil {
		return ""
	}
	parts := []string{string(e.Code)}
	if e.OrderID != 0 {
		parts = append(parts, fmt.Sprintf("order_id=%d", e.OrderID))
	}
	if e.OperationID != 0 {
		parts = append(parts, fmt.Sprintf("operation_id=%d", e.OperationID))
	}
	if e.ProductID != 0 {
		parts = append(parts, fmt.Sprintf("product_id=%d", e.ProductID))
	}
	return strings.Join(parts, " ")
}

// Unwrap 返回哨兵错误，供 errors.Is 判断
func (e *OrderError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Cause 返回底层原因（可能为 nil）
func (e *OrderError) Cause() error {
	if e == nil {
		return nil
	}
	return e.cause
}

var sentinelCodes = map[error]ErrorCode{
	ErrOrderNotFound:          CodeNotFound,
	ErrOrderForbidden:         CodeForbidden,
	ErrOrderIllegalTransition: CodeIllegalTransition,
	ErrOrderAlreadyPaid:       CodeAlreadyPaid,
	ErrOrderStatusInvalid:     CodeInvalidStatus,
	ErrBulkActionInvalid:      CodeInvalidAction,
	ErrBulkOperationNotFound:  CodeNotFound,
	ErrBulkAlreadyRolledBack:  CodeAlreadyRolledBack,
	ErrNothingToRollBack:      CodeNothingToRollBack,
	ErrInsufficientStock:      CodeInsufficientStock,
	ErrInvalidOrderItem:       CodeInvalidOrderItem,
	ErrPersistence:            CodePersistenceFailure,
}

func orderFailure(sentinel error, orderID uint) *OrderError {
	return &OrderError{Code: sentinelCodes[sentinel], OrderID: orderID, Err: sentinel}
}

func operationFailure(sentinel error, operationID uint) *OrderError {
	return &OrderError{Code: sentinelCodes[sentinel], OperationID: operationID, Err: sentinel}
}

func stockFailure(productID uint) *OrderError {
	return &OrderError{Code: CodeInsufficientStock, ProductID: productID, Err: ErrInsufficientStock}
}

// persistenceFailure 包装存储层错误；已是 OrderError 的直接透传
func persistenceFailure(cause error, orderID, operationID uint) error {
	if cause == nil {
		return nil
	}
	var typed *OrderError
	if errors.As(cause, &typed) {
		return typed
	}
	return &OrderError{
		Code:        CodePersistenceFailure,
		OrderID:     orderID,
		OperationID: operationID,
		Err:         ErrPersistence,
		cause:       cause,
	}
}

// CodeOf 提取错误原因码，非 OrderError 返回 persistence_failure
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var typed *OrderError
	if errors.As(err, &typed) {
		return typed.Code
	}
	return CodePersistenceFailure
}
