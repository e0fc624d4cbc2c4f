package profile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	users     *mongo.Collection
	addresses *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return mongoRepository{
		users:     db.Collection("users"),
		addresses: db.Collection("saved_addresses"),
	}
}

func (m mongoRepository) GetUserByPhone(ctx context.Context, phone string) (*domain.User, error) {
	var user domain.User
	err := m.users.FindOne(ctx, bson.M{"phone": phone}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (m mongoRepository) PutUser(ctx context.Context, user *domain.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	filter := bson.M{"_id": user.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.users.ReplaceOne(ctx, filter, user, opts); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

type savedAddress struct {
	UserID    string         `bson:"user_id"`
	Address   domain.Address `bson:"address"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

func (m mongoRepository) GetSavedAddress(ctx context.Context, userID string) (*domain.Address, error) {
	var doc savedAddress
	err := m.addresses.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to get saved address: %w", err)
	}
	return &doc.Address, nil
}

func (m mongoRepository) SaveAddress(ctx context.Context, userID string, address domain.Address) error {
	doc := savedAddress{
		UserID:    userID,
		Address:   address,
		UpdatedAt: time.Now(),
	}
	filter := bson.M{"user_id": userID}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.addresses.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to save address: %w", err)
	}
	return nil
}
