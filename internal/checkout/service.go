package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/Brooksey3011/military-tees-uk/internal/cart"
	"github.com/Brooksey3011/military-tees-uk/internal/catalog"
	"github.com/Brooksey3011/military-tees-uk/pkg/db/models"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/metrics"
	"github.com/Brooksey3011/military-tees-uk/pkg/money"
	"github.com/Brooksey3011/military-tees-uk/pkg/square"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartAccess interface {
	Get(ctx context.Context, sessionID string) (cart.State, error)
	Clear(ctx context.Context, sessionID string) (cart.State, error)
}

type variantLoader interface {
	VariantForCart(ctx context.Context, variantID uuid.UUID) (*catalog.CartVariant, error)
}

type paymentCreator interface {
	CreatePayment(ctx context.Context, params square.PaymentCreateParams) (*sq.Payment, error)
}

// Input carries the storefront checkout payload. SourceID is the one-time
// payment token minted by the Web Payments SDK.
type Input struct {
	SourceID string
	Note     string
}

// LineIssue describes one cart line that failed revalidation.
type LineIssue struct {
	ItemID       uuid.UUID `json:"item_id"`
	VariantID    uuid.UUID `json:"variant_id"`
	Reason       string    `json:"reason"`
	CurrentPence *int      `json:"current_price_pence,omitempty"`
	AvailableQty *int      `json:"available_qty,omitempty"`
}

const (
	issueUnavailable       = "unavailable"
	issueInsufficientStock = "insufficient_stock"
	issuePriceChanged      = "price_changed"
)

// Receipt is returned once the payment settles.
type Receipt struct {
	OrderID       uuid.UUID          `json:"order_id"`
	PaymentID     string             `json:"payment_id"`
	Status        models.OrderStatus `json:"status"`
	Currency      string             `json:"currency"`
	TotalItems    int                `json:"total_items"`
	SubtotalPence int                `json:"subtotal_pence"`
}

// Service executes the checkout orchestration: revalidate the cart against
// the live catalog, freeze the order, charge the payment, then clear the
// cart. The cart is only cleared after the payment is confirmed.
type Service interface {
	Execute(ctx context.Context, sessionID string, input Input) (*Receipt, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListOrders(ctx context.Context, sessionID string, limit int) ([]models.Order, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	carts    cartAccess
	catalog  variantLoader
	payments paymentCreator
	metrics  *metrics.CartMetrics
}

// NewService builds the checkout service. Metrics may be nil.
func NewService(
	tx txRunner,
	repo Repository,
	carts cartAccess,
	loader variantLoader,
	payments paymentCreator,
	cartMetrics *metrics.CartMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart access required")
	}
	if loader == nil {
		return nil, fmt.Errorf("variant loader required")
	}
	if payments == nil {
		return nil, fmt.Errorf("payment client required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		carts:    carts,
		catalog:  loader,
		payments: payments,
		metrics:  cartMetrics,
	}, nil
}

func (s *service) Execute(ctx context.Context, sessionID string, input Input) (*Receipt, error) {
	if sessionID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	if input.SourceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is required")
	}

	state, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(state.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	lines, issues, err := s.revalidate(ctx, state.Items)
	if err != nil {
		return nil, err
	}
	if len(issues) > 0 {
		s.metrics.IncCheckout("revalidation_failed")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart requires review before checkout").
			WithDetails(map[string]any{"lines": issues})
	}

	order := &models.Order{
		SessionID: sessionID,
		Status:    models.OrderStatusPending,
		Currency:  "GBP",
	}
	for _, line := range lines {
		order.TotalItems += line.Quantity
		order.SubtotalPence += line.LineTotalPence
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].OrderID = created.ID
		}
		return repo.CreateLineItems(ctx, lines)
	})
	if err != nil {
		s.metrics.IncCheckout("order_failed")
		return nil, err
	}

	payment, err := s.payments.CreatePayment(ctx, square.PaymentCreateParams{
		AmountPence: int64(order.SubtotalPence),
		Currency:    order.Currency,
		SourceID:    input.SourceID,
		Note:        input.Note,
		ReferenceID: order.ID.String(),
	})
	if err != nil {
		// The order stays behind as a canceled record for reconciliation.
		_ = s.repo.MarkCanceled(ctx, order.ID)
		s.metrics.IncCheckout("payment_failed")
		return nil, err
	}

	paymentID := stringValue(payment.GetID())
	if err := s.repo.MarkPaid(ctx, order.ID, paymentID, time.Now().UTC()); err != nil {
		// The charge is already captured. Surface both ids so the payment
		// can be reconciled against the pending row.
		s.metrics.IncCheckout("settle_failed")
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err,
			fmt.Sprintf("order %s charged as square payment %s but not marked paid", order.ID, paymentID))
	}

	if _, err := s.carts.Clear(ctx, sessionID); err != nil {
		return nil, err
	}

	s.metrics.IncCheckout("success")
	return &Receipt{
		OrderID:       order.ID,
		PaymentID:     paymentID,
		Status:        models.OrderStatusPaid,
		Currency:      order.Currency,
		TotalItems:    order.TotalItems,
		SubtotalPence: order.SubtotalPence,
	}, nil
}

// revalidate re-reads every cart line from the catalog. Prices and stock
// ceilings captured at add time are advisory only; the order freezes the
// catalog values current at checkout.
func (s *service) revalidate(ctx context.Context, items []cart.Item) ([]models.OrderLineItem, []LineIssue, error) {
	lines := make([]models.OrderLineItem, 0, len(items))
	var issues []LineIssue

	for _, item := range items {
		variant, err := s.catalog.VariantForCart(ctx, item.VariantID)
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				issues = append(issues, LineIssue{
					ItemID:    item.ID,
					VariantID: item.VariantID,
					Reason:    issueUnavailable,
				})
				continue
			}
			return nil, nil, err
		}
		if !variant.Active {
			issues = append(issues, LineIssue{
				ItemID:    item.ID,
				VariantID: item.VariantID,
				Reason:    issueUnavailable,
			})
			continue
		}
		if variant.StockQty < item.Quantity {
			qty := variant.StockQty
			issues = append(issues, LineIssue{
				ItemID:       item.ID,
				VariantID:    item.VariantID,
				Reason:       issueInsufficientStock,
				AvailableQty: &qty,
			})
			continue
		}
		if variant.PricePence != money.ToPence(item.Price) {
			pence := variant.PricePence
			issues = append(issues, LineIssue{
				ItemID:       item.ID,
				VariantID:    item.VariantID,
				Reason:       issuePriceChanged,
				CurrentPence: &pence,
			})
			continue
		}

		lines = append(lines, models.OrderLineItem{
			ProductID:      item.ProductID,
			VariantID:      item.VariantID,
			Name:           item.Name,
			Size:           item.Size,
			Color:          item.Color,
			UnitPricePence: variant.PricePence,
			Quantity:       item.Quantity,
			LineTotalPence: variant.PricePence * item.Quantity,
		})
	}

	return lines, issues, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.repo.FindOrderByID(ctx, orderID)
}

func (s *service) ListOrders(ctx context.Context, sessionID string, limit int) ([]models.Order, error) {
	return s.repo.ListOrdersBySession(ctx, sessionID, limit)
}

func stringValue(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
