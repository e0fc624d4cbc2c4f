// Package tracking keeps the minimal post-order record the analytics
// attribution pipeline reads: order value, currency and order id.
package tracking

import "context"

type Record struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
	OrderID  string `json:"orderId"`
}

type Store interface {
	Save(ctx context.Context, userID string, record Record) error
	Get(ctx context.Context, userID string) (*Record, error)
}
