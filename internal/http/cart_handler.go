package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/cart"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/catalog"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
)

// CartService is what the handler needs from the cart layer.
type CartService interface {
	GetCart(ctx context.Context, userID string) (*domain.Cart, error)
	AddItem(ctx context.Context, userID string, productID int64, quantity int, variant *domain.Variant) (*domain.Cart, error)
	UpdateQuantity(ctx context.Context, userID string, productID int64, variant *domain.Variant, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, userID string, productID int64, variant *domain.Variant) (*domain.Cart, error)
	Clear(ctx context.Context, userID string) error
}

type CartHandler struct {
	carts   CartService
	timeout time.Duration
}

func NewCartHandler(carts CartService, timeout time.Duration) *CartHandler {
	return &CartHandler{
		carts:   carts,
		timeout: timeout,
	}
}

type VariantDTO struct {
	Name       string `json:"name"`
	ColorToken string `json:"color_token"`
}

func (v *VariantDTO) toDomain() *domain.Variant {
	if v == nil {
		return nil
	}
	return &domain.Variant{Name: v.Name, ColorToken: v.ColorToken}
}

type AddItemRequestDTO struct {
	ProductID int64       `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Variant   *VariantDTO `json:"variant,omitempty"`
}

type UpdateQuantityRequestDTO struct {
	Quantity int         `json:"quantity"`
	Variant  *VariantDTO `json:"variant,omitempty"`
}

func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user or device identity")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	updated, err := h.carts.AddItem(ctx, userID, req.ProductID, req.Quantity, req.Variant.toDomain())
	if err != nil {
		handleCartError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, updated)
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user or device identity")
		return
	}

	current, err := h.carts.GetCart(ctx, userID)
	if err != nil {
		handleCartError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, current)
}

func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user or device identity")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity <= 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	updated, err := h.carts.UpdateQuantity(ctx, userID, productID, req.Variant.toDomain(), req.Quantity)
	if err != nil {
		handleCartError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user or device identity")
		return
	}

	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var variant *VariantDTO
	if name := r.URL.Query().Get("variant"); name != "" {
		variant = &VariantDTO{Name: name, ColorToken: r.URL.Query().Get("color_token")}
	}

	updated, err := h.carts.RemoveItem(ctx, userID, productID, variant.toDomain())
	if err != nil {
		handleCartError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user or device identity")
		return
	}

	if err := h.carts.Clear(ctx, userID); err != nil {
		handleCartError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productIDStr := chi.URLParam(r, "product_id")
	productID, err := strconv.ParseInt(productIDStr, 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a positive integer")
		return 0, false
	}
	return productID, true
}

func handleCartError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(w, http.StatusNotFound, "not_found", "product not found")
	case errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "not_found", "item is not in the cart")
	case errors.Is(err, cart.ErrCartNotFound):
		respondError(w, http.StatusNotFound, "not_found", "cart not found")
	default:
		log.Printf("request %s: cart operation failed: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "cart operation failed")
	}
}
