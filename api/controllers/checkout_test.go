package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/Brooksey3011/military-tees-uk/api/middleware"
	checkoutsvc "github.com/Brooksey3011/military-tees-uk/internal/checkout"
	"github.com/Brooksey3011/military-tees-uk/pkg/db/models"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
)

type stubCheckoutService struct {
	receipt *checkoutsvc.Receipt
	order   *models.Order
	orders  []models.Order
	err     error

	input checkoutsvc.Input
}

func (s *stubCheckoutService) Execute(_ context.Context, _ string, input checkoutsvc.Input) (*checkoutsvc.Receipt, error) {
	s.input = input
	return s.receipt, s.err
}

func (s *stubCheckoutService) GetOrder(context.Context, uuid.UUID) (*models.Order, error) {
	return s.order, s.err
}

func (s *stubCheckoutService) ListOrders(context.Context, string, int) ([]models.Order, error) {
	return s.orders, s.err
}

func TestCheckoutExecuteSuccess(t *testing.T) {
	svc := &stubCheckoutService{receipt: &checkoutsvc.Receipt{
		OrderID:       uuid.New(),
		PaymentID:     "sq-payment-abc",
		Status:        models.OrderStatusPaid,
		Currency:      "GBP",
		TotalItems:    2,
		SubtotalPence: 4998,
	}}
	handler := CheckoutExecute(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", `{"source_id":"cnon:token"}`))

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.input.SourceID != "cnon:token" {
		t.Fatalf("source id not forwarded: %+v", svc.input)
	}

	var envelope struct {
		Data checkoutsvc.Receipt `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.PaymentID != "sq-payment-abc" {
		t.Fatalf("unexpected receipt: %+v", envelope.Data)
	}
}

func TestCheckoutExecuteRequiresSource(t *testing.T) {
	handler := CheckoutExecute(&stubCheckoutService{}, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", `{}`))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutExecuteConflictPassthrough(t *testing.T) {
	svc := &stubCheckoutService{err: pkgerrors.New(pkgerrors.CodeConflict, "cart requires review before checkout")}
	handler := CheckoutExecute(svc, nil)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, sessionRequest(http.MethodPost, "/api/v1/checkout", `{"source_id":"cnon:token"}`))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestOrderGetScopedToSession(t *testing.T) {
	orderID := uuid.New()
	sessionID := uuid.NewString()
	svc := &stubCheckoutService{order: &models.Order{
		ID:            orderID,
		SessionID:     sessionID,
		Status:        models.OrderStatusPaid,
		Currency:      "GBP",
		SubtotalPence: 2499,
	}}
	handler := OrderGet(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
	req = withURLParam(req, "orderID", orderID.String())

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	// Another session must not see the order.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+orderID.String(), nil)
	req = req.WithContext(middleware.WithSessionID(req.Context(), uuid.NewString()))
	req = withURLParam(req, "orderID", orderID.String())

	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for foreign session, got %d", resp.Code)
	}
}
