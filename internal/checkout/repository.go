package checkout

import (
	"context"
	"errors"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
)

var ErrIdempotencyKeyNotFound = errors.New("idempotency key not found")

// RepoInterface is the checkout session store. Sessions are small and
// short-lived but survive process restarts so an interrupted checkout can
// resume.
type RepoInterface interface {
	CreateSession(ctx context.Context, session *domain.CheckoutSession) error
	GetSession(ctx context.Context, id string) (*domain.CheckoutSession, error)
	GetSessionByIdempotencyKey(ctx context.Context, key string) (*domain.CheckoutSession, error)
	UpdateSession(ctx context.Context, session *domain.CheckoutSession) error
}
