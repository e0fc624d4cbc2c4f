package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/checkout"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/payment"
)

// CheckoutService is the wizard surface the handler drives.
type CheckoutService interface {
	Start(ctx context.Context, userID string, authenticated bool, idempotencyKey string) (*domain.CheckoutSession, error)
	Get(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
	Authenticate(ctx context.Context, sessionID, userID string) (*domain.CheckoutSession, error)
	SubmitAddress(ctx context.Context, sessionID string, addr domain.Address) (*domain.CheckoutSession, domain.FieldErrors, error)
	ChangeAddress(ctx context.Context, sessionID string) (*domain.CheckoutSession, error)
	Summary(ctx context.Context, sessionID string) (*checkout.Review, error)
	SubmitCOD(ctx context.Context, sessionID string) (*checkout.SubmitResult, error)
	CreateGatewayOrder(ctx context.Context, sessionID string) (*payment.GatewayOrder, error)
	CompleteGatewayPayment(ctx context.Context, sessionID string, callback payment.CallbackResult) (*checkout.SubmitResult, error)
}

type CheckoutHandler struct {
	checkout CheckoutService
	timeout  time.Duration
}

func NewCheckoutHandler(checkoutService CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkoutService,
		timeout:  timeout,
	}
}

type AddressDTO struct {
	FullName     string `json:"full_name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

func (a AddressDTO) toDomain() domain.Address {
	return domain.Address{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
	}
}

type AddressErrorsDTO struct {
	Error       string             `json:"error"`
	Code        string             `json:"code"`
	FieldErrors domain.FieldErrors `json:"field_errors"`
}

type GatewayCallbackDTO struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

// Start opens (or resumes, via the Idempotency-Key header) a checkout
// session over the caller's cart.
func (h *CheckoutHandler) Start(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user or device identity")
		return
	}

	session, err := h.checkout.Start(ctx, userID, isAuthenticated(r.Context()), r.Header.Get("Idempotency-Key"))
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (h *CheckoutHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.checkout.Get(ctx, chi.URLParam(r, "session_id"))
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// Authenticate attaches the now-logged-in user to a session that started at
// the LOGIN step. Requires a valid token.
func (h *CheckoutHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	session, err := h.checkout.Authenticate(ctx, chi.URLParam(r, "session_id"), userID)
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// SubmitAddress validates and stores the delivery address. Validation
// problems come back as 422 with one message per offending field; the
// session keeps the submitted values so the form can redisplay them.
func (h *CheckoutHandler) SubmitAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddressDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	session, fieldErrs, err := h.checkout.SubmitAddress(ctx, chi.URLParam(r, "session_id"), req.toDomain())
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}
	if len(fieldErrs) != 0 {
		respondJSON(w, http.StatusUnprocessableEntity, AddressErrorsDTO{
			Error:       "address failed validation",
			Code:        "invalid_address",
			FieldErrors: fieldErrs,
		})
		return
	}

	respondJSON(w, http.StatusOK, session)
}

// ChangeAddress steps back from PAYMENT to the address form.
func (h *CheckoutHandler) ChangeAddress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	session, err := h.checkout.ChangeAddress(ctx, chi.URLParam(r, "session_id"))
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (h *CheckoutHandler) Summary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	review, err := h.checkout.Summary(ctx, chi.URLParam(r, "session_id"))
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, review)
}

func (h *CheckoutHandler) SubmitCOD(w http.ResponseWriter, r *http.Request) {
	// no handler timeout here: the service bounds the order write itself
	// and must run its fallback logic if that bound is hit
	result, err := h.checkout.SubmitCOD(r.Context(), chi.URLParam(r, "session_id"))
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func (h *CheckoutHandler) CreateGatewayOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	gatewayOrder, err := h.checkout.CreateGatewayOrder(ctx, chi.URLParam(r, "session_id"))
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, gatewayOrder)
}

func (h *CheckoutHandler) GatewayCallback(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req GatewayCallbackDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	result, err := h.checkout.CompleteGatewayPayment(ctx, chi.URLParam(r, "session_id"), payment.CallbackResult{
		GatewayOrderID:   req.GatewayOrderID,
		GatewayPaymentID: req.GatewayPaymentID,
		Signature:        req.Signature,
	})
	if err != nil {
		handleCheckoutError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

func handleCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, checkout.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "not_found", "checkout session not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", "cart is empty")
	case errors.Is(err, checkout.ErrSessionCompleted):
		respondError(w, http.StatusConflict, "already_completed", "checkout session is already completed")
	case errors.Is(err, checkout.IllegalTransitionError):
		respondError(w, http.StatusConflict, "illegal_transition", "operation is not valid for the current checkout step")
	case errors.Is(err, checkout.ErrAddressInvalid):
		respondError(w, http.StatusUnprocessableEntity, "invalid_address", "delivery address is missing or invalid")
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", "a submission for this session is already being processed")
	case errors.Is(err, checkout.ErrGatewayOrderMissing):
		respondError(w, http.StatusConflict, "gateway_order_missing", "no matching gateway order for this session")
	case errors.Is(err, checkout.ErrVerificationFailed):
		respondError(w, http.StatusPaymentRequired, "verification_failed", "payment could not be verified, please contact support before retrying")
	default:
		log.Printf("request %s: checkout operation failed: %v", getRequestID(r.Context()), err)
		respondError(w, http.StatusInternalServerError, "internal_error", "checkout operation failed")
	}
}
