package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Brooksey3011/military-tees-uk/pkg/db/models"
	"github.com/Brooksey3011/military-tees-uk/pkg/money"
)

// VariantSummary is the purchasable configuration as exposed to the API.
type VariantSummary struct {
	ID        uuid.UUID       `json:"id"`
	SKU       string          `json:"sku"`
	Size      string          `json:"size"`
	Color     string          `json:"color"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  *string         `json:"image_url,omitempty"`
	InStock   bool            `json:"in_stock"`
	StockQty  int             `json:"stock_qty"`
	IsActive  bool            `json:"is_active"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ProductSummary is a listing row.
type ProductSummary struct {
	ID         uuid.UUID       `json:"id"`
	SKU        string          `json:"sku"`
	Name       string          `json:"name"`
	Slug       string          `json:"slug"`
	Category   string          `json:"category"`
	Tags       []string        `json:"tags"`
	ImageURL   *string         `json:"image_url,omitempty"`
	IsFeatured bool            `json:"is_featured"`
	FromPrice  decimal.Decimal `json:"from_price"`
}

// ProductDetail carries the full product plus its variants.
type ProductDetail struct {
	ProductSummary
	Description *string          `json:"description,omitempty"`
	Variants    []VariantSummary `json:"variants"`
}

// ProductPage wraps a listing with offset pagination metadata.
type ProductPage struct {
	Products []ProductSummary `json:"products"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
	Total    int64            `json:"total"`
}

// CartVariant is the authoritative price/stock snapshot the cart reads at
// add time (and again during checkout revalidation).
type CartVariant struct {
	ProductID   uuid.UUID
	VariantID   uuid.UUID
	ProductName string
	ImageURL    string
	Size        string
	Color       string
	Price       decimal.Decimal
	PricePence  int
	StockQty    int
	Active      bool
}

func newVariantSummary(variant models.ProductVariant) VariantSummary {
	stock := 0
	if variant.Inventory != nil {
		stock = variant.Inventory.AvailableQty
	}
	return VariantSummary{
		ID:        variant.ID,
		SKU:       variant.SKU,
		Size:      variant.Size,
		Color:     variant.Color,
		Price:     money.FromPence(variant.PricePence),
		ImageURL:  variant.ImageURL,
		InStock:   stock > 0,
		StockQty:  stock,
		IsActive:  variant.IsActive,
		UpdatedAt: variant.UpdatedAt,
	}
}

func newProductSummary(product models.Product) ProductSummary {
	summary := ProductSummary{
		ID:         product.ID,
		SKU:        product.SKU,
		Name:       product.Name,
		Slug:       product.Slug,
		Category:   product.Category,
		Tags:       append([]string{}, product.Tags...),
		ImageURL:   product.ImageURL,
		IsFeatured: product.IsFeatured,
	}
	for i, variant := range product.Variants {
		price := money.FromPence(variant.PricePence)
		if i == 0 || price.LessThan(summary.FromPrice) {
			summary.FromPrice = price
		}
	}
	return summary
}

func newProductDetail(product models.Product) *ProductDetail {
	detail := &ProductDetail{
		ProductSummary: newProductSummary(product),
		Description:    product.Description,
	}
	for _, variant := range product.Variants {
		detail.Variants = append(detail.Variants, newVariantSummary(variant))
	}
	return detail
}
