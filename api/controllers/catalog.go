package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Brooksey3011/military-tees-uk/api/responses"
	"github.com/Brooksey3011/military-tees-uk/api/validators"
	"github.com/Brooksey3011/military-tees-uk/internal/catalog"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
)

// ProductsList serves the storefront catalog listing.
func ProductsList(repo *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 24, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		featured, err := validators.ParseQueryBool(r, "featured")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := repo.ListProducts(r.Context(), catalog.ListParams{
			Category: strings.TrimSpace(r.URL.Query().Get("category")),
			Featured: featured,
			Page:     page,
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ProductGet serves one product with its purchasable variants.
func ProductGet(repo *catalog.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		detail, err := repo.GetProductBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
