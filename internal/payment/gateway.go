// Package payment talks to the hosted payment gateway. The gateway owns the
// actual charge; this package only creates order handles and verifies the
// identifiers the hosted checkout hands back.
package payment

import "context"

// GatewayOrder is the opaque handle the gateway issues for a pending charge.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// CallbackResult carries the identifiers the hosted checkout UI yields on
// completion. Signature covers "<order id>|<payment id>".
type CallbackResult struct {
	GatewayOrderID   string `json:"gateway_order_id"`
	GatewayPaymentID string `json:"gateway_payment_id"`
	Signature        string `json:"signature"`
}

type Client interface {
	// CreateOrder registers the already-discounted total with the gateway
	// and returns the order handle for the hosted checkout.
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*GatewayOrder, error)
	// VerifyPayment checks the callback identifiers; false means the
	// payment must be treated as unconfirmed regardless of what the
	// client claims.
	VerifyPayment(ctx context.Context, result CallbackResult) (bool, error)
}
