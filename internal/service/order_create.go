package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/metrics"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/repository"

	"gorm.io/gorm"
)

const (
	defaultMaxOrderItems    = 50
	defaultMaxOrderQuantity = 999

	// 同日编号空间有限，撞上唯一约束时换号重试
	orderCodeAttempts = 5
)

// CreateOrderItem 下单项
type CreateOrderItem struct {
	ProductID uint         `json:"product_id"`
	Quantity  int          `json:"quantity"`
	UnitPrice models.Money `json:"unit_price"`
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	CustomerID    uint
	StoreID       uint
	PaymentMethod string
	Receiver      string
	Phone         string
	Address       string
	Items         []CreateOrderItem
}

// OrderCreateOptions 下单限制
type OrderCreateOptions struct {
	CodePrefix  string
	MaxItems    int
	MaxQuantity int
}

// OrderCreateService 下单事务（订单 + 明细 + 门店库存扣减）
type OrderCreateService struct {
	db            *gorm.DB
	orderRepo     repository.OrderRepository
	inventoryRepo repository.InventoryRepository
	events        *EventPublisher
	metrics       *metrics.Recorder
	options       OrderCreateOptions
	newCode       func(prefix string, now time.Time) string
}

// NewOrderCreateService 创建下单服务
func NewOrderCreateService(db *gorm.DB, orderRepo repository.OrderRepository, inventoryRepo repository.InventoryRepository, events *EventPublisher, recorder *metrics.Recorder, options OrderCreateOptions) *OrderCreateService {
	if len(strings.TrimSpace(options.CodePrefix)) != len(constants.OrderCodePrefix) {
		options.CodePrefix = constants.OrderCodePrefix
	}
	if options.MaxItems <= 0 {
		options.MaxItems = defaultMaxOrderItems
	}
	if options.MaxQuantity <= 0 {
		options.MaxQuantity = defaultMaxOrderQuantity
	}
	options.CodePrefix = strings.ToUpper(strings.TrimSpace(options.CodePrefix))
	return &OrderCreateService{
		db:            db,
		orderRepo:     orderRepo,
		inventoryRepo: inventoryRepo,
		events:        events,
		metrics:       recorder,
		options:       options,
		newCode:       generateOrderCode,
	}
}

// CreateOrder 创建订单：任一商品库存不足时整单回滚
func (s *OrderCreateService) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	items, err := s.normalizeInput(&input)
	if err != nil {
		s.metrics.Rejected(string(CodeOf(err)))
		return nil, err
	}

	total := models.Money{}
	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		total = total.Plus(item.UnitPrice.LineTotal(item.Quantity))
		lines = append(lines, models.OrderLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	order := &models.Order{
		CustomerID:    input.CustomerID,
		StoreID:       input.StoreID,
		Status:        constants.OrderStatusProcessing,
		Paid:          false,
		TotalAmount:   total,
		PaymentMethod: input.PaymentMethod,
		Receiver:      input.Receiver,
		Phone:         input.Phone,
		Address:       input.Address,
	}

	for attempt := 1; ; attempt++ {
		order.ID = 0
		order.OrderCode = s.newCode(s.options.CodePrefix, time.Now())
		err = s.insertOrder(ctx, input.StoreID, items, order, lines)
		if !errors.Is(err, gorm.ErrDuplicatedKey) || attempt >= orderCodeAttempts {
			break
		}
		logger.Debugw("order_code_conflict_retry",
			"request_id", RequestIDFromContext(ctx),
			"order_code", order.OrderCode,
			"attempt", attempt,
		)
	}
	if err != nil {
		if IsOrderError(err) {
			s.metrics.Rejected(string(CodeOf(err)))
			return nil, err
		}
		logger.Warnw("order_create_failed",
			"request_id", RequestIDFromContext(ctx),
			"customer_id", input.CustomerID,
			"store_id", input.StoreID,
			"error", err,
		)
		return nil, persistenceFailure(err, 0, 0)
	}

	s.metrics.OrderCreated()
	logger.Infow("order_created",
		"request_id", RequestIDFromContext(ctx),
		"order_id", order.ID,
		"order_code", order.OrderCode,
		"store_id", order.StoreID,
		"total_amount", order.TotalAmount.String(),
	)
	s.events.publishSystemLog(ctx, systemLogEntry{
		ActorID:   input.CustomerID,
		ActorRole: constants.ActorRoleCustomer,
		Action:    constants.SystemLogActionOrderCreated,
		StoreID:   order.StoreID,
		Detail: map[string]interface{}{
			"order_id":     order.ID,
			"order_code":   order.OrderCode,
			"total_amount": order.TotalAmount.String(),
		},
	})
	return order, nil
}

// insertOrder 单个事务内扣减库存并写入订单与明细
func (s *OrderCreateService) insertOrder(ctx context.Context, storeID uint, items []CreateOrderItem, order *models.Order, lines []models.OrderLine) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inventoryRepo := s.inventoryRepo.WithTx(tx)
		for _, item := range items {
			affected, err := inventoryRepo.Reserve(storeID, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return stockFailure(item.ProductID)
			}
		}
		return s.orderRepo.WithTx(tx).Create(order, lines)
	})
}

// normalizeInput 校验输入并合并重复商品
func (s *OrderCreateService) normalizeInput(input *CreateOrderInput) ([]CreateOrderItem, error) {
	invalid := &OrderError{Code: CodeInvalidOrderItem, Err: ErrInvalidOrderItem}
	if input.CustomerID == 0 || input.StoreID == 0 {
		return nil, invalid
	}
	if len(input.Items) == 0 || len(input.Items) > s.options.MaxItems {
		return nil, invalid
	}
	input.PaymentMethod = strings.ToLower(strings.TrimSpace(input.PaymentMethod))
	if input.PaymentMethod == "" {
		input.PaymentMethod = constants.PaymentMethodCOD
	}
	if !validPaymentMethod(input.PaymentMethod) {
		return nil, invalid
	}
	input.Receiver = strings.TrimSpace(input.Receiver)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)

	merged := make([]CreateOrderItem, 0, len(input.Items))
	index := make(map[uint]int, len(input.Items))
	for _, item := range input.Items {
		if item.ProductID == 0 || item.Quantity <= 0 || item.UnitPrice.IsNegative() {
			return nil, &OrderError{Code: CodeInvalidOrderItem, ProductID: item.ProductID, Err: ErrInvalidOrderItem}
		}
		if idx, ok := index[item.ProductID]; ok {
			// 同一商品单价不一致视为非法输入
			if !merged[idx].UnitPrice.Equal(item.UnitPrice.Decimal) {
				return nil, &OrderError{Code: CodeInvalidOrderItem, ProductID: item.ProductID, Err: ErrInvalidOrderItem}
			}
			merged[idx].Quantity += item.Quantity
		} else {
			index[item.ProductID] = len(merged)
			merged = append(merged, item)
		}
	}
	for _, item := range merged {
		if item.Quantity > s.options.MaxQuantity {
			return nil, &OrderError{Code: CodeInvalidOrderItem, ProductID: item.ProductID, Err: ErrInvalidOrderItem}
		}
	}
	return merged, nil
}

func validPaymentMethod(method string) bool {
	switch method {
	case constants.PaymentMethodCOD, constants.PaymentMethodTransfer, constants.PaymentMethodEWallet:
		return true
	default:
		return false
	}
}

// generateOrderCode 订单编号：前缀 + yyMMdd + 随机数字
func generateOrderCode(prefix string, now time.Time) string {
	return fmt.Sprintf("%s%s%s", prefix, now.Format("060102"), randNumeric(constants.OrderCodeRandDigits))
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(n.String())
	}
	return b.String()
}
