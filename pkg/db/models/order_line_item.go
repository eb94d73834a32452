package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderLineItem freezes one cart line at checkout time.
type OrderLineItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID      uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	VariantID      uuid.UUID `gorm:"column:variant_id;type:uuid;not null"`
	Name           string    `gorm:"column:name;not null"`
	Size           string    `gorm:"column:size;not null"`
	Color          string    `gorm:"column:color;not null"`
	UnitPricePence int       `gorm:"column:unit_price_pence;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	LineTotalPence int       `gorm:"column:line_total_pence;not null"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}
