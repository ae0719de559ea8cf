package repository

import (
	"errors"

	"github.com/orderflow-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InventoryRepository 门店库存数据访问接口
type InventoryRepository interface {
	Get(storeID, productID uint) (*models.Inventory, error)
	Upsert(storeID, productID uint, quantity int) error
	Reserve(storeID, productID uint, quantity int) (int64, error)
	WithTx(tx *gorm.DB) *GormInventoryRepository
}

// GormInventoryRepository GORM 实现
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormInventoryRepository) WithTx(tx *gorm.DB) *GormInventoryRepository {
	if tx == nil {
		return r
	}
	return &GormInventoryRepository{db: tx}
}

// Get 获取门店商品库存
func (r *GormInventoryRepository) Get(storeID, productID uint) (*models.Inventory, error) {
	var inventory models.Inventory
	if err := r.db.Where("store_id = ? AND product_id = ?", storeID, productID).First(&inventory).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &inventory, nil
}

// Upsert 设置门店商品库存（存在则覆盖数量）
func (r *GormInventoryRepository) Upsert(storeID, productID uint, quantity int) error {
	if storeID == 0 || productID == 0 || quantity < 0 {
		return errors.New("invalid inventory upsert params")
	}
	row := models.Inventory{StoreID: storeID, ProductID: productID, Quantity: quantity}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quantity", "updated_at"}),
	}).Create(&row).Error
}

// Reserve 扣减库存，库存不足时影响行数为 0
func (r *GormInventoryRepository) Reserve(storeID, productID uint, quantity int) (int64, error) {
	if storeID == 0 || productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid inventory reserve params")
	}
	result := r.db.Model(&models.Inventory{}).
		Where("store_id = ? AND product_id = ? AND quantity >= ?", storeID, productID, quantity).
		Updates(map[string]interface{}{
			"quantity": gorm.Expr("quantity - ?", quantity),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
