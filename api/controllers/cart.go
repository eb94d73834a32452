package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Brooksey3011/military-tees-uk/api/middleware"
	"github.com/Brooksey3011/military-tees-uk/api/responses"
	"github.com/Brooksey3011/military-tees-uk/api/validators"
	cartsvc "github.com/Brooksey3011/military-tees-uk/internal/cart"
	pkgerrors "github.com/Brooksey3011/military-tees-uk/pkg/errors"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
	"github.com/Brooksey3011/military-tees-uk/pkg/money"
)

// CartGet returns the session's cart snapshot.
func CartGet(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		state, err := svc.Get(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"omitempty,uuid4"`
	VariantID string `json:"variant_id" validate:"required,uuid4"`
}

// CartAddItem adds one unit of a variant, merging with an existing line.
func CartAddItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variantID, err := uuid.Parse(payload.VariantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid variant id"))
			return
		}
		productID := uuid.Nil
		if payload.ProductID != "" {
			productID, err = uuid.Parse(payload.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
		}

		state, err := svc.AddItem(r.Context(), sessionID, productID, variantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,min=0,max=99"`
}

// CartUpdateQuantity sets the quantity for a cart line. Zero removes it.
func CartUpdateQuantity(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateQuantityRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.UpdateQuantity(r.Context(), sessionID, itemID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartRemoveItem removes a cart line. Removing an absent line is a no-op.
func CartRemoveItem(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParsePathUUID(chi.URLParam(r, "itemID"), "item_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state, err := svc.RemoveItem(r.Context(), sessionID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

// CartClear empties the cart and closes the drawer.
func CartClear(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartTransition(svc.Clear, logg)
}

func CartOpen(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartTransition(svc.Open, logg)
}

func CartClose(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartTransition(svc.Close, logg)
}

func CartToggle(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartTransition(svc.Toggle, logg)
}

// CartPrune drops lines whose variant is gone, inactive, or sold out.
func CartPrune(svc cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return cartTransition(svc.PruneUnavailable, logg)
}

func cartTransition(op func(ctx context.Context, sessionID string) (cartsvc.State, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := requireSession(w, r, logg)
		if !ok {
			return
		}
		state, err := op(r.Context(), sessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(state))
	}
}

func requireSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (string, bool) {
	sessionID := middleware.SessionIDFromContext(r.Context())
	if sessionID == "" {
		responses.WriteError(r.Context(), logg, w,
			pkgerrors.New(pkgerrors.CodeValidation, "session is required"))
		return "", false
	}
	return sessionID, true
}

type cartItemResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	VariantID    uuid.UUID `json:"variant_id"`
	Name         string    `json:"name"`
	Image        string    `json:"image,omitempty"`
	Size         string    `json:"size"`
	Color        string    `json:"color"`
	Price        string    `json:"price"`
	PriceDisplay string    `json:"price_display"`
	Quantity     int       `json:"quantity"`
	MaxQuantity  int       `json:"max_quantity"`
}

type cartResponse struct {
	Items             []cartItemResponse `json:"items"`
	IsOpen            bool               `json:"is_open"`
	TotalItems        int                `json:"total_items"`
	TotalPrice        string             `json:"total_price"`
	TotalPriceDisplay string             `json:"total_price_display"`
}

func newCartResponse(state cartsvc.State) cartResponse {
	resp := cartResponse{
		Items:             make([]cartItemResponse, 0, len(state.Items)),
		IsOpen:            state.IsOpen,
		TotalItems:        state.TotalItems,
		TotalPrice:        state.TotalPrice.StringFixed(2),
		TotalPriceDisplay: money.FormatGBP(state.TotalPrice),
	}
	for _, item := range state.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			VariantID:    item.VariantID,
			Name:         item.Name,
			Image:        item.Image,
			Size:         item.Size,
			Color:        item.Color,
			Price:        item.Price.StringFixed(2),
			PriceDisplay: money.FormatGBP(item.Price),
			Quantity:     item.Quantity,
			MaxQuantity:  item.MaxQuantity,
		})
	}
	return resp
}
