package catalog

import (
	"context"
	"errors"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
)

var ErrProductNotFound = errors.New("product not found")

type Repository interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	Close() error
	RunMigrations(string) error
}
