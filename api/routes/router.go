package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Brooksey3011/military-tees-uk/api/controllers"
	"github.com/Brooksey3011/military-tees-uk/api/middleware"
	"github.com/Brooksey3011/military-tees-uk/internal/cart"
	"github.com/Brooksey3011/military-tees-uk/internal/catalog"
	checkoutsvc "github.com/Brooksey3011/military-tees-uk/internal/checkout"
	"github.com/Brooksey3011/military-tees-uk/pkg/config"
	"github.com/Brooksey3011/military-tees-uk/pkg/db"
	"github.com/Brooksey3011/military-tees-uk/pkg/logger"
	"github.com/Brooksey3011/military-tees-uk/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	catalogRepo *catalog.Repository,
	cartService cart.Service,
	checkoutService checkoutsvc.Service,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadyDeps(dbP, redisClient)))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(catalogRepo, logg))
			r.Get("/{slug}", controllers.ProductGet(catalogRepo, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Session(cfg.Cart, cfg.App.IsProd(), logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.CartGet(cartService, logg))
				r.Post("/items", controllers.CartAddItem(cartService, logg))
				r.Patch("/items/{itemID}", controllers.CartUpdateQuantity(cartService, logg))
				r.Delete("/items/{itemID}", controllers.CartRemoveItem(cartService, logg))
				r.Post("/clear", controllers.CartClear(cartService, logg))
				r.Post("/open", controllers.CartOpen(cartService, logg))
				r.Post("/close", controllers.CartClose(cartService, logg))
				r.Post("/toggle", controllers.CartToggle(cartService, logg))
				r.Post("/prune", controllers.CartPrune(cartService, logg))
			})

			r.Post("/checkout", controllers.CheckoutExecute(checkoutService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.OrdersList(checkoutService, logg))
				r.Get("/{orderID}", controllers.OrderGet(checkoutService, logg))
			})
		})
	})

	return r
}
