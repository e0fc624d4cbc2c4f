package domain

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

type OrderItem struct {
	ProductID   int64    `json:"product_id"`
	ProductName string   `json:"product_name"`
	Variant     *Variant `json:"variant,omitempty"`
	Quantity    int      `json:"quantity"`
	// Price is the discounted unit price actually charged.
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url"`
}

// Order is the canonical, submission-ready record of a completed checkout.
// Shipping and billing address are identical in the current flow, so a
// single Address is carried and written to both destinations at the
// repository boundary. Immutable after creation except for status columns.
type Order struct {
	ID               uuid.UUID
	CheckoutID       uuid.UUID
	UserID           string
	CustomerName     string
	CustomerPhone    string
	Address          Address
	Items            []OrderItem
	Subtotal         int64 // discounted
	DiscountAmount   int64
	DiscountCode     string
	ShippingFee      int64
	Total            int64
	Currency         string
	PaymentMethod    PaymentMethod
	PaymentStatus    PaymentStatus
	Status           OrderStatus
	GatewayOrderID   string
	GatewayPaymentID string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
