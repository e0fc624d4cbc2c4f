package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Orders   *OrdersHandler
	Tracking *TrackingHandler
	Verifier TokenVerifier
}

// NewRouter assembles the storefront API. Identity is resolved for every
// request; routes that need a real account additionally pass RequireAuth.
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(IdentityMiddleware(h.Verifier))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.Auth.Login)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.Products.ListProducts)
			r.Get("/{id}", h.Products.GetProduct)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.Cart.GetCart)
			r.Post("/items", h.Cart.AddItem)
			r.Put("/items/{product_id}", h.Cart.UpdateQuantity)
			r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			r.Delete("/", h.Cart.ClearCart)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Post("/", h.Checkout.Start)
			r.Route("/{session_id}", func(r chi.Router) {
				r.Get("/", h.Checkout.GetSession)
				r.With(RequireAuth).Post("/authenticate", h.Checkout.Authenticate)
				r.Put("/address", h.Checkout.SubmitAddress)
				r.Post("/address/edit", h.Checkout.ChangeAddress)
				r.Get("/summary", h.Checkout.Summary)
				r.Post("/submit/cod", h.Checkout.SubmitCOD)
				r.Post("/gateway-order", h.Checkout.CreateGatewayOrder)
				r.Post("/gateway-callback", h.Checkout.GatewayCallback)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/", h.Orders.ListMyOrders)
			r.Get("/{order_id}", h.Orders.GetOrder)
		})

		r.With(RequireAuth).Get("/tracking/last-order", h.Tracking.LastOrder)
	})

	return otelhttp.NewHandler(r, "storefront-api")
}
