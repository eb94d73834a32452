package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// itemNamespace seeds the deterministic item identity so that the same
// (product, variant) pair always maps to the same cart item ID.
var itemNamespace = uuid.MustParse("8f1c2a34-9d5b-4c6e-a1f0-3b7d8e92c514")

// NewItemID derives the stable cart item identity for a product variant.
func NewItemID(productID, variantID uuid.UUID) uuid.UUID {
	seed := make([]byte, 0, 32)
	seed = append(seed, productID[:]...)
	seed = append(seed, variantID[:]...)
	return uuid.NewSHA1(itemNamespace, seed)
}

// Item is one product variant selected for purchase. Name, Image, Size,
// Color, and Price are display snapshots captured at add time and are not
// refreshed from the catalog afterwards.
type Item struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   uuid.UUID       `json:"variant_id"`
	Name        string          `json:"name"`
	Image       string          `json:"image,omitempty"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	MaxQuantity int             `json:"max_quantity"`
}

// Candidate is an item without a quantity, as handed to AddItem. MaxQuantity
// and Price carry the authoritative catalog values at the moment of the add.
type Candidate struct {
	ProductID   uuid.UUID
	VariantID   uuid.UUID
	Name        string
	Image       string
	Size        string
	Color       string
	Price       decimal.Decimal
	MaxQuantity int
}

// State is the full cart snapshot handed to consumers. TotalItems and
// TotalPrice are derived from Items after every mutation and are never
// mutated independently.
type State struct {
	Items      []Item          `json:"items"`
	IsOpen     bool            `json:"is_open"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Totals holds the derived aggregates.
type Totals struct {
	TotalItems int
	TotalPrice decimal.Decimal
}

// ComputeTotals recomputes the aggregates from the item list alone. It is
// the only path that produces aggregate values.
func ComputeTotals(items []Item) Totals {
	totals := Totals{TotalPrice: decimal.Zero}
	for _, item := range items {
		totals.TotalItems += item.Quantity
		totals.TotalPrice = totals.TotalPrice.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return totals
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
