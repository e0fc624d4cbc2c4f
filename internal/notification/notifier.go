package notification

import "context"

type ItemSummary struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// OrderConfirmation is the payload sent once after an order is persisted.
type OrderConfirmation struct {
	OrderID       string        `json:"order_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerPhone string        `json:"customer_phone"`
	Total         int64         `json:"total"`
	Currency      string        `json:"currency"`
	Items         []ItemSummary `json:"items"`
	Address       string        `json:"address"`
}

// Notifier is fire-and-forget: implementations log failures and never
// propagate them, so a notification outage cannot block checkout.
type Notifier interface {
	OrderConfirmed(ctx context.Context, event OrderConfirmation)
}
