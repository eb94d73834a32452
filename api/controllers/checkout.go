package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Brooksey3011/military-tees-uk/api/responses"
	"github.com/Brooksey3011/military-tees-uk/api/validators"
	checkoutsvc "github.com/Brooksey3011/military-tees-uk/internal/checkout"
	"github.com/Brooksey3011/military-tees-uk/pkg/db/models"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
	"github.com/Brooksey3011/military-tees-uk/pkg/money"
)

type checkoutRequest struct {
	SourceID string `json:"source_id" validate:"required"`
	Note     string `json:"note" validate:"omitempty,max=500"`
}

// CheckoutExecute revalidates the cart, freezes the order, and charges the
// payment source in one call.
func CheckoutExecute(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Execute(r.Context(), sessionID, checkoutsvc.Input{
			SourceID: payload.SourceID,
			Note:     payload.Note,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// OrderGet returns one of the session's orders.
func OrderGet(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.SessionID != sessionID {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, newOrderResponse(*order))
	}
}

// OrdersList returns the session's most recent orders.
func OrdersList(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 10, 1, 50)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListOrders(r.Context(), sessionID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(orders))
		for _, order := range orders {
			out = append(out, newOrderResponse(order))
		}
		responses.WriteSuccess(w, out)
	}
}

type orderLineResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	VariantID uuid.UUID `json:"variant_id"`
	Name      string    `json:"name"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
	UnitPrice string    `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal string    `json:"line_total"`
}

type orderResponse struct {
	ID         uuid.UUID           `json:"id"`
	Status     models.OrderStatus  `json:"status"`
	Currency   string              `json:"currency"`
	TotalItems int                 `json:"total_items"`
	Subtotal   string              `json:"subtotal"`
	PaymentID  *string             `json:"payment_id,omitempty"`
	PaidAt     *time.Time          `json:"paid_at,omitempty"`
	LineItems  []orderLineResponse `json:"line_items"`
	CreatedAt  time.Time           `json:"created_at"`
}

func newOrderResponse(order models.Order) orderResponse {
	resp := orderResponse{
		ID:         order.ID,
		Status:     order.Status,
		Currency:   order.Currency,
		TotalItems: order.TotalItems,
		Subtotal:   money.FromPence(order.SubtotalPence).StringFixed(2),
		PaymentID:  order.PaymentID,
		PaidAt:     order.PaidAt,
		CreatedAt:  order.CreatedAt,
	}
	for _, line := range order.LineItems {
		resp.LineItems = append(resp.LineItems, orderLineResponse{
			ProductID: line.ProductID,
			VariantID: line.VariantID,
			Name:      line.Name,
			Size:      line.Size,
			Color:     line.Color,
			UnitPrice: money.FromPence(line.UnitPricePence).StringFixed(2),
			Quantity:  line.Quantity,
			LineTotal: money.FromPence(line.LineTotalPence).StringFixed(2),
		})
	}
	return resp
}
