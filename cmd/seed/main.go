package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/orderflow-next/internal/config"
	"github.com/orderflow-next/internal/constants"
	"github.com/orderflow-next/internal/logger"
	"github.com/orderflow-next/internal/models"
	"github.com/orderflow-next/internal/provider"
	"github.com/orderflow-next/internal/service"

	"github.com/shopspring/decimal"
)

type seedProduct struct {
	ProductID uint
	Quantity  int
	Price     decimal.Decimal
}

func main() {
	var (
		storeID    uint
		staffID    uint
		customerID uint
		orders     int
	)
	flag.UintVar(&storeID, "store", 1, "门店 ID")
	flag.UintVar(&staffID, "staff", 1, "员工 ID")
	flag.UintVar(&customerID, "customer", 1001, "顾客 ID")
	flag.IntVar(&orders, "orders", 5, "生成的示例订单数量")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	container := provider.NewContainer(cfg)

	// 门店库存
	products := []seedProduct{
		{ProductID: 1, Quantity: 200, Price: decimal.RequireFromString("12.50")},
		{ProductID: 2, Quantity: 120, Price: decimal.RequireFromString("3.90")},
		{ProductID: 3, Quantity: 60, Price: decimal.RequireFromString("48.00")},
	}
	for _, p := range products {
		if err := container.InventoryRepo.Upsert(storeID, p.ProductID, p.Quantity); err != nil {
			stdLog.Fatalf("Failed to seed inventory product=%d: %v", p.ProductID, err)
		}
		stdLog.Printf("Seeded inventory: store=%d product=%d quantity=%d", storeID, p.ProductID, p.Quantity)
	}

	// 示例订单（处理中）
	ctx := context.Background()
	for i := 0; i < orders; i++ {
		p := products[i%len(products)]
		order, err := container.OrderCreateService.CreateOrder(ctx, service.CreateOrderInput{
			CustomerID:    customerID,
			StoreID:       storeID,
			PaymentMethod: constants.PaymentMethodCOD,
			Receiver:      fmt.Sprintf("Demo Customer %d", i+1),
			Phone:         fmt.Sprintf("090000%04d", i+1),
			Address:       "1 Demo Street",
			Items: []service.CreateOrderItem{
				{ProductID: p.ProductID, Quantity: 1 + i%3, UnitPrice: models.NewMoneyFromDecimal(p.Price)},
			},
		})
		if err != nil {
			stdLog.Printf("Failed to create demo order: %v", err)
			continue
		}
		stdLog.Printf("Created order: id=%d code=%s total=%s", order.ID, order.OrderCode, order.TotalAmount.String())
	}

	// 演示令牌
	staffToken, staffExpires, err := container.ActorTokenService.Issue(constants.ActorRoleStaff, staffID, storeID)
	if err != nil {
		stdLog.Fatalf("Failed to issue staff token: %v", err)
	}
	customerToken, customerExpires, err := container.ActorTokenService.Issue(constants.ActorRoleCustomer, customerID, 0)
	if err != nil {
		stdLog.Fatalf("Failed to issue customer token: %v", err)
	}
	fmt.Printf("staff token (expires %s):\n%s\n\n", staffExpires.Format("2006-01-02 15:04"), staffToken)
	fmt.Printf("customer token (expires %s):\n%s\n", customerExpires.Format("2006-01-02 15:04"), customerToken)
}
