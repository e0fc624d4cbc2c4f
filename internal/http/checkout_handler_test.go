package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/checkout"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/payment"
)

type checkoutServiceMock struct {
	session      *domain.CheckoutSession
	fieldErrs    domain.FieldErrors
	review       *checkout.Review
	result       *checkout.SubmitResult
	gatewayOrder *payment.GatewayOrder
	err          error
}

func (m checkoutServiceMock) Start(context.Context, string, bool, string) (*domain.CheckoutSession, error) {
	return m.session, m.err
}

func (m checkoutServiceMock) Get(context.Context, string) (*domain.CheckoutSession, error) {
	return m.session, m.err
}

func (m checkoutServiceMock) Authenticate(context.Context, string, string) (*domain.CheckoutSession, error) {
	return m.session, m.err
}

func (m checkoutServiceMock) SubmitAddress(context.Context, string, domain.Address) (*domain.CheckoutSession, domain.FieldErrors, error) {
	return m.session, m.fieldErrs, m.err
}

func (m checkoutServiceMock) ChangeAddress(context.Context, string) (*domain.CheckoutSession, error) {
	return m.session, m.err
}

func (m checkoutServiceMock) Summary(context.Context, string) (*checkout.Review, error) {
	return m.review, m.err
}

func (m checkoutServiceMock) SubmitCOD(context.Context, string) (*checkout.SubmitResult, error) {
	return m.result, m.err
}

func (m checkoutServiceMock) CreateGatewayOrder(context.Context, string) (*payment.GatewayOrder, error) {
	return m.gatewayOrder, m.err
}

func (m checkoutServiceMock) CompleteGatewayPayment(context.Context, string, payment.CallbackResult) (*checkout.SubmitResult, error) {
	return m.result, m.err
}

func checkoutRouter(svc CheckoutService) http.Handler {
	h := NewCheckoutHandler(svc, 5*time.Second)
	r := chi.NewRouter()
	r.Post("/checkout", h.Start)
	r.Get("/checkout/{session_id}", h.GetSession)
	r.Put("/checkout/{session_id}/address", h.SubmitAddress)
	r.Get("/checkout/{session_id}/summary", h.Summary)
	r.Post("/checkout/{session_id}/submit/cod", h.SubmitCOD)
	r.Post("/checkout/{session_id}/gateway-order", h.CreateGatewayOrder)
	r.Post("/checkout/{session_id}/gateway-callback", h.GatewayCallback)
	return r
}

func TestStartCheckout_Created(t *testing.T) {
	svc := checkoutServiceMock{session: &domain.CheckoutSession{
		ID:   "b1c72c0e-99ab-4c6e-8f2e-0d47e1b3a111",
		Step: domain.StepAddress,
	}}

	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout", nil), "user-1")
	rec := httptest.NewRecorder()
	checkoutRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp domain.CheckoutSession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StepAddress, resp.Step)
}

func TestStartCheckout_RequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/checkout", nil)
	rec := httptest.NewRecorder()
	checkoutRouter(checkoutServiceMock{}).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	svc := checkoutServiceMock{err: checkout.ErrEmptyCart}

	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout", nil), "user-1")
	rec := httptest.NewRecorder()
	checkoutRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "empty_cart", resp.Code)
}

func TestSubmitAddress_FieldErrorsAs422(t *testing.T) {
	svc := checkoutServiceMock{
		session:   &domain.CheckoutSession{Step: domain.StepAddress},
		fieldErrs: domain.FieldErrors{"phone": "phone must be exactly 10 digits"},
	}
	body, _ := json.Marshal(AddressDTO{FullName: "Asha Rao", Phone: "987654321"})

	req := asUser(httptest.NewRequest(http.MethodPut, "/checkout/s-1/address", bytes.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()
	checkoutRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var resp AddressErrorsDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_address", resp.Code)
	assert.Contains(t, resp.FieldErrors, "phone")
	assert.Len(t, resp.FieldErrors, 1)
}

func TestSubmitCOD_Created(t *testing.T) {
	svc := checkoutServiceMock{result: &checkout.SubmitResult{OrderID: "ord-1"}}

	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout/s-1/submit/cod", nil), "user-1")
	rec := httptest.NewRecorder()
	checkoutRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp checkout.SubmitResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ord-1", resp.OrderID)
	assert.False(t, resp.Fallback)
}

func TestCheckoutErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"session missing", checkout.ErrSessionNotFound, http.StatusNotFound, "not_found"},
		{"wrong step", checkout.IllegalTransitionError, http.StatusConflict, "illegal_transition"},
		{"already done", checkout.ErrSessionCompleted, http.StatusConflict, "already_completed"},
		{"bad address", checkout.ErrAddressInvalid, http.StatusUnprocessableEntity, "invalid_address"},
		{"double click", checkout.ErrSubmissionInFlight, http.StatusConflict, "submission_in_flight"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := checkoutServiceMock{err: tc.err}
			req := asUser(httptest.NewRequest(http.MethodPost, "/checkout/s-1/submit/cod", nil), "user-1")
			rec := httptest.NewRecorder()
			checkoutRouter(svc).ServeHTTP(rec, req)

			require.Equal(t, tc.status, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tc.code, resp.Code)
		})
	}
}

func TestGatewayCallback_VerificationFailure(t *testing.T) {
	svc := checkoutServiceMock{err: checkout.ErrVerificationFailed}
	body, _ := json.Marshal(GatewayCallbackDTO{GatewayOrderID: "gw-1", GatewayPaymentID: "pay-1"})

	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout/s-1/gateway-callback", bytes.NewReader(body)), "user-1")
	rec := httptest.NewRecorder()
	checkoutRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "verification_failed", resp.Code)
}

func TestCreateGatewayOrder_ReturnsHandle(t *testing.T) {
	svc := checkoutServiceMock{gatewayOrder: &payment.GatewayOrder{
		ID:       "gw_order_1",
		Amount:   3499,
		Currency: "INR",
	}}

	req := asUser(httptest.NewRequest(http.MethodPost, "/checkout/s-1/gateway-order", nil), "user-1")
	rec := httptest.NewRecorder()
	checkoutRouter(svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp payment.GatewayOrder
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(3499), resp.Amount)
}
