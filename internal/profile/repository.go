package profile

import (
	"context"
	"errors"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrAddressNotFound = errors.New("no saved address")
)

// Repository holds user records and the single saved delivery address the
// checkout resume shortcut relies on.
type Repository interface {
	GetUserByPhone(ctx context.Context, phone string) (*domain.User, error)
	PutUser(ctx context.Context, user *domain.User) error
	GetSavedAddress(ctx context.Context, userID string) (*domain.Address, error)
	SaveAddress(ctx context.Context, userID string, address domain.Address) error
}
