package models

import (
	"time"

	"github.com/google/uuid"
)

// ProductVariant is a purchasable size/colour configuration with its own SKU,
// price, and stock count.
type ProductVariant struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID  uuid.UUID      `gorm:"column:product_id;type:uuid;not null;index"`
	SKU        string         `gorm:"column:sku;not null;uniqueIndex"`
	Size       string         `gorm:"column:size;not null"`
	Color      string         `gorm:"column:color;not null"`
	PricePence int            `gorm:"column:price_pence;not null"`
	ImageURL   *string        `gorm:"column:image_url"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	Inventory  *InventoryItem `gorm:"foreignKey:VariantID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
