package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product represents one catalog listing (e.g. a tee design). Purchasable
// configurations live on its variants.
type Product struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SKU         string           `gorm:"column:sku;not null;uniqueIndex"`
	Name        string           `gorm:"column:name;not null"`
	Slug        string           `gorm:"column:slug;not null;uniqueIndex"`
	Description *string          `gorm:"column:description"`
	Category    string           `gorm:"column:category;not null"`
	Tags        pq.StringArray   `gorm:"column:tags;type:text[];not null;default:ARRAY[]::text[]"`
	ImageURL    *string          `gorm:"column:image_url"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	IsFeatured  bool             `gorm:"column:is_featured;not null;default:false"`
	Variants    []ProductVariant `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
