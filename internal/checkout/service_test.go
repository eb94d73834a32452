package checkout

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/Brooksey3011/military-tees-uk/internal/cart"
	"github.com/Brooksey3011/military-tees-uk/internal/catalog"
	"github.com/Brooksey3011/military-tees-uk/pkg/db/models"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/money"
	"github.com/Brooksey3011/military-tees-uk/pkg/square"
)

type stubTx struct{}

func (stubTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type memRepo struct {
	orders      map[uuid.UUID]*models.Order
	lines       map[uuid.UUID][]models.OrderLineItem
	paidWith    string
	canceled    []uuid.UUID
	markPaidErr error
}

func newMemRepo() *memRepo {
	return &memRepo{
		orders: map[uuid.UUID]*models.Order{},
		lines:  map[uuid.UUID][]models.OrderLineItem{},
	}
}

func (r *memRepo) WithTx(*gorm.DB) Repository { return r }

func (r *memRepo) CreateOrder(_ context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	r.orders[order.ID] = order
	return order, nil
}

func (r *memRepo) CreateLineItems(_ context.Context, items []models.OrderLineItem) error {
	if len(items) == 0 {
		return nil
	}
	r.lines[items[0].OrderID] = items
	return nil
}

func (r *memRepo) FindOrderByID(_ context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (r *memRepo) ListOrdersBySession(_ context.Context, sessionID string, _ int) ([]models.Order, error) {
	var out []models.Order
	for _, order := range r.orders {
		if order.SessionID == sessionID {
			out = append(out, *order)
		}
	}
	return out, nil
}

func (r *memRepo) MarkPaid(_ context.Context, orderID uuid.UUID, paymentID string, paidAt time.Time) error {
	if r.markPaidErr != nil {
		return r.markPaidErr
	}
	order, ok := r.orders[orderID]
	if !ok || order.Status != models.OrderStatusPending {
		return pkgerrors.New(pkgerrors.CodeConflict, "order is not pending")
	}
	order.Status = models.OrderStatusPaid
	order.PaymentID = &paymentID
	order.PaidAt = &paidAt
	r.paidWith = paymentID
	return nil
}

func (r *memRepo) MarkCanceled(_ context.Context, orderID uuid.UUID) error {
	r.canceled = append(r.canceled, orderID)
	if order, ok := r.orders[orderID]; ok && order.Status == models.OrderStatusPending {
		order.Status = models.OrderStatusCanceled
	}
	return nil
}

type stubCarts struct {
	state   cart.State
	cleared bool
}

func (s *stubCarts) Get(context.Context, string) (cart.State, error) {
	return s.state, nil
}

func (s *stubCarts) Clear(context.Context, string) (cart.State, error) {
	s.cleared = true
	return cart.State{}, nil
}

type stubCatalog struct {
	variants map[uuid.UUID]*catalog.CartVariant
}

func (s *stubCatalog) VariantForCart(_ context.Context, variantID uuid.UUID) (*catalog.CartVariant, error) {
	variant, ok := s.variants[variantID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return variant, nil
}

type stubPayments struct {
	params square.PaymentCreateParams
	err    error
	calls  int
}

func (s *stubPayments) CreatePayment(_ context.Context, params square.PaymentCreateParams) (*sq.Payment, error) {
	s.calls++
	s.params = params
	if s.err != nil {
		return nil, s.err
	}
	id := "sq-payment-abc"
	status := "COMPLETED"
	return &sq.Payment{ID: &id, Status: &status}, nil
}

type fixture struct {
	svc      Service
	repo     *memRepo
	carts    *stubCarts
	payments *stubPayments
}

func newFixture(t *testing.T, items []cart.Item, variants map[uuid.UUID]*catalog.CartVariant) *fixture {
	t.Helper()

	repo := newMemRepo()
	carts := &stubCarts{state: cart.State{Items: items}}
	payments := &stubPayments{}
	svc, err := NewService(stubTx{}, repo, carts, &stubCatalog{variants: variants}, payments, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{svc: svc, repo: repo, carts: carts, payments: payments}
}

func cartLine(variant *catalog.CartVariant, qty int) cart.Item {
	return cart.Item{
		ID:          cart.NewItemID(variant.ProductID, variant.VariantID),
		ProductID:   variant.ProductID,
		VariantID:   variant.VariantID,
		Name:        variant.ProductName,
		Size:        variant.Size,
		Color:       variant.Color,
		Price:       money.FromPence(variant.PricePence),
		Quantity:    qty,
		MaxQuantity: variant.StockQty,
	}
}

func checkoutVariant(pricePence, stock int) *catalog.CartVariant {
	return &catalog.CartVariant{
		ProductID:   uuid.New(),
		VariantID:   uuid.New(),
		ProductName: "Commando Tee",
		Size:        "M",
		Color:       "Black",
		Price:       money.FromPence(pricePence),
		PricePence:  pricePence,
		StockQty:    stock,
		Active:      true,
	}
}

func lineIssues(t *testing.T, typed *pkgerrors.Error) []LineIssue {
	t.Helper()

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %+v", typed.Details())
	}
	issues, ok := details["lines"].([]LineIssue)
	if !ok || len(issues) == 0 {
		t.Fatalf("expected line issues, got %+v", details)
	}
	return issues
}

func TestExecuteHappyPath(t *testing.T) {
	t.Parallel()

	variant := checkoutVariant(2499, 10)
	fx := newFixture(t, []cart.Item{cartLine(variant, 2)}, map[uuid.UUID]*catalog.CartVariant{
		variant.VariantID: variant,
	})

	receipt, err := fx.svc.Execute(context.Background(), "sess", Input{SourceID: "cnon:token"})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if receipt.Status != models.OrderStatusPaid {
		t.Fatalf("expected paid receipt, got %s", receipt.Status)
	}
	if receipt.SubtotalPence != 4998 || receipt.TotalItems != 2 {
		t.Fatalf("wrong totals: %+v", receipt)
	}
	if receipt.PaymentID != "sq-payment-abc" {
		t.Fatalf("expected payment id on receipt, got %q", receipt.PaymentID)
	}

	if fx.payments.params.AmountPence != 4998 {
		t.Fatalf("payment charged %d pence", fx.payments.params.AmountPence)
	}
	if fx.payments.params.Currency != "GBP" {
		t.Fatalf("expected GBP charge, got %q", fx.payments.params.Currency)
	}
	if !fx.carts.cleared {
		t.Fatal("cart must clear after the payment settles")
	}

	order := fx.repo.orders[receipt.OrderID]
	if order == nil || order.Status != models.OrderStatusPaid {
		t.Fatalf("order not settled: %+v", order)
	}
	lines := fx.repo.lines[receipt.OrderID]
	if len(lines) != 1 || lines[0].LineTotalPence != 4998 {
		t.Fatalf("unexpected line items: %+v", lines)
	}
}

func TestExecuteRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, nil, nil)

	_, err := fx.svc.Execute(context.Background(), "sess", Input{SourceID: "cnon:token"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestExecuteRequiresPaymentSource(t *testing.T) {
	t.Parallel()

	variant := checkoutVariant(2499, 10)
	fx := newFixture(t, []cart.Item{cartLine(variant, 1)}, map[uuid.UUID]*catalog.CartVariant{
		variant.VariantID: variant,
	})

	_, err := fx.svc.Execute(context.Background(), "sess", Input{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fx.payments.calls != 0 {
		t.Fatal("no payment may be attempted without a source")
	}
}

func TestExecuteFlagsPriceDrift(t *testing.T) {
	t.Parallel()

	variant := checkoutVariant(2499, 10)
	line := cartLine(variant, 2)
	variant.PricePence = 2999

	fx := newFixture(t, []cart.Item{line}, map[uuid.UUID]*catalog.CartVariant{
		variant.VariantID: variant,
	})

	_, err := fx.svc.Execute(context.Background(), "sess", Input{SourceID: "cnon:token"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	issues := lineIssues(t, typed)
	if len(issues) != 1 {
		t.Fatalf("expected one line issue, got %+v", typed.Details())
	}
	if issues[0].Reason != issuePriceChanged || issues[0].CurrentPence == nil || *issues[0].CurrentPence != 2999 {
		t.Fatalf("unexpected issue: %+v", issues[0])
	}
	if fx.payments.calls != 0 {
		t.Fatal("no payment may be attempted on revalidation failure")
	}
	if fx.carts.cleared {
		t.Fatal("cart must survive a failed checkout")
	}
}

func TestExecuteFlagsStockShortfall(t *testing.T) {
	t.Parallel()

	variant := checkoutVariant(2499, 5)
	line := cartLine(variant, 5)
	variant.StockQty = 1

	fx := newFixture(t, []cart.Item{line}, map[uuid.UUID]*catalog.CartVariant{
		variant.VariantID: variant,
	})

	_, err := fx.svc.Execute(context.Background(), "sess", Input{SourceID: "cnon:token"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	issues := lineIssues(t, typed)
	if issues[0].Reason != issueInsufficientStock || *issues[0].AvailableQty != 1 {
		t.Fatalf("unexpected issue: %+v", issues[0])
	}
}

func TestExecuteFlagsVanishedVariant(t *testing.T) {
	t.Parallel()

	variant := checkoutVariant(2499, 5)
	fx := newFixture(t, []cart.Item{cartLine(variant, 1)}, map[uuid.UUID]*catalog.CartVariant{})

	_, err := fx.svc.Execute(context.Background(), "sess", Input{SourceID: "cnon:token"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	issues := lineIssues(t, typed)
	if issues[0].Reason != issueUnavailable {
		t.Fatalf("unexpected issue: %+v", issues[0])
	}
}

func TestExecuteSettleFailureNamesCapturedPayment(t *testing.T) {
	t.Parallel()

	variant := checkoutVariant(2499, 10)
	fx := newFixture(t, []cart.Item{cartLine(variant, 1)}, map[uuid.UUID]*catalog.CartVariant{
		variant.VariantID: variant,
	})
	fx.repo.markPaidErr = pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")

	_, err := fx.svc.Execute(context.Background(), "sess", Input{SourceID: "cnon:token"})
	if err == nil {
		t.Fatal("expected settle failure to propagate")
	}
	if !strings.Contains(err.Error(), "sq-payment-abc") {
		t.Fatalf("error must name the captured payment for reconciliation: %v", err)
	}
	if fx.carts.cleared {
		t.Fatal("cart must survive a failed settle")
	}
	if len(fx.repo.canceled) != 0 {
		t.Fatalf("a charged order must not cancel, got %v", fx.repo.canceled)
	}
	for _, order := range fx.repo.orders {
		if order.Status != models.OrderStatusPending {
			t.Fatalf("order should stay pending for reconciliation: %+v", order)
		}
		if !strings.Contains(err.Error(), order.ID.String()) {
			t.Fatalf("error must name the order: %v", err)
		}
	}
}

func TestExecuteCancelsOrderOnPaymentFailure(t *testing.T) {
	t.Parallel()

	variant := checkoutVariant(2499, 10)
	fx := newFixture(t, []cart.Item{cartLine(variant, 1)}, map[uuid.UUID]*catalog.CartVariant{
		variant.VariantID: variant,
	})
	fx.payments.err = pkgerrors.New(pkgerrors.CodeDependency, "square create payment failed")

	_, err := fx.svc.Execute(context.Background(), "sess", Input{SourceID: "cnon:token"})
	if err == nil {
		t.Fatal("expected payment failure to propagate")
	}
	if len(fx.repo.canceled) != 1 {
		t.Fatalf("expected the pending order to cancel, got %v", fx.repo.canceled)
	}
	if fx.carts.cleared {
		t.Fatal("cart must survive a failed payment")
	}
}
