package order

import (
	"context"
	"errors"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	// ErrDuplicateCheckout fires when a second order is inserted for the
	// same checkout session: the submit-twice case.
	ErrDuplicateCheckout = errors.New("order for this checkout already exists")
	// ErrDuplicatePayment fires when the same gateway payment id is
	// verified twice.
	ErrDuplicatePayment = errors.New("order for this payment already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByCheckoutID(ctx context.Context, checkoutID uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	RunMigrations(*Credentials) error
	Close() error
}
