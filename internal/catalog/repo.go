package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Brooksey3011/military-tees-uk/pkg/db/models"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/money"
)

const (
	defaultPageLimit = 24
	maxPageLimit     = 100
)

// Repository is the read-only catalog surface. It is the authority the cart
// trusts for price and stock at add time.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListParams filters and pages a product listing.
type ListParams struct {
	Category string
	Featured bool
	Page     int
	Limit    int
}

// ListProducts returns active products ordered newest first.
func (r *Repository) ListProducts(ctx context.Context, params ListParams) (ProductPage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	query := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true)

	if category := strings.TrimSpace(params.Category); category != "" {
		query = query.Where("category = ?", category)
	}
	if params.Featured {
		query = query.Where("is_featured = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return ProductPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}

	var records []models.Product
	if err := query.
		Preload("Variants", "is_active = ?", true).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&records).Error; err != nil {
		return ProductPage{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	result := ProductPage{Page: page, Limit: limit, Total: total}
	for _, record := range records {
		result.Products = append(result.Products, newProductSummary(record))
	}
	return result, nil
}

// GetProductBySlug returns the product detail with its active variants and
// their stock counts.
func (r *Repository) GetProductBySlug(ctx context.Context, slug string) (*ProductDetail, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product slug is required")
	}

	var record models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", "is_active = ?", true).
		Preload("Variants.Inventory").
		Where("slug = ? AND is_active = ?", slug, true).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	return newProductDetail(record), nil
}

// VariantForCart resolves the authoritative cart snapshot for one variant:
// current unit price, current stock ceiling, and the display fields the cart
// denormalizes at add time.
func (r *Repository) VariantForCart(ctx context.Context, variantID uuid.UUID) (*CartVariant, error) {
	if variantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant id is required")
	}

	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		Preload("Inventory").
		Where("id = ?", variantID).
		First(&variant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load variant")
	}

	var product models.Product
	err = r.db.WithContext(ctx).
		Where("id = ?", variant.ProductID).
		First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	stock := 0
	if variant.Inventory != nil {
		stock = variant.Inventory.AvailableQty
	}
	image := ""
	if variant.ImageURL != nil {
		image = *variant.ImageURL
	} else if product.ImageURL != nil {
		image = *product.ImageURL
	}

	return &CartVariant{
		ProductID:   product.ID,
		VariantID:   variant.ID,
		ProductName: product.Name,
		ImageURL:    image,
		Size:        variant.Size,
		Color:       variant.Color,
		Price:       money.FromPence(variant.PricePence),
		PricePence:  variant.PricePence,
		StockQty:    stock,
		Active:      product.IsActive && variant.IsActive,
	}, nil
}
