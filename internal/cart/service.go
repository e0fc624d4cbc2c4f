package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/cart/cache"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"golang.org/x/sync/singleflight"
)

// maxLineQuantity caps a single cart line; repeated adds merge into the
// same line and must not push past it.
const maxLineQuantity = 99

// ProductCatalog is the slice of the catalog this service needs.
type ProductCatalog interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

type Service struct {
	repo     CartRepository
	cache    cache.CartCache
	catalog  ProductCatalog
	currency string
	sfg      singleflight.Group // Prevents cache stampede
}

func NewService(repo CartRepository, cartCache cache.CartCache, cat ProductCatalog, currency string) *Service {
	return &Service{
		repo:     repo,
		cache:    cartCache,
		catalog:  cat,
		currency: currency,
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) { // not found cart return empty cart
			return &domain.Cart{
				UserID:    userID,
				Items:     nil,
				CreatedAt: time.Now(),
				UpdatedAt: time.Now(),
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v", errSet)
			}
		}()

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

// AddItem puts a product+variant line into the cart; if the line already
// exists its quantity is increased instead.
func (s *Service) AddItem(ctx context.Context, userID string, productID int64, quantity int, variant *domain.Variant) (*domain.Cart, error) {
	if _, err := s.catalog.GetProduct(ctx, productID); err != nil {
		return nil, err
	}

	cart, err := s.loadForWrite(ctx, userID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].SameLine(productID, variant) {
			cart.Items[i].Quantity += quantity
			if cart.Items[i].Quantity > maxLineQuantity {
				cart.Items[i].Quantity = maxLineQuantity
			}
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Variant:   variant,
			AddedAt:   time.Now(),
		})
	}

	return s.save(ctx, userID, cart)
}

func (s *Service) UpdateQuantity(ctx context.Context, userID string, productID int64, variant *domain.Variant, quantity int) (*domain.Cart, error) {
	cart, err := s.loadForWrite(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].SameLine(productID, variant) {
			cart.Items[i].Quantity = quantity
			return s.save(ctx, userID, cart)
		}
	}
	return nil, ErrItemNotFound
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID int64, variant *domain.Variant) (*domain.Cart, error) {
	cart, err := s.loadForWrite(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].SameLine(productID, variant) {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.save(ctx, userID, cart)
		}
	}
	return nil, ErrItemNotFound
}

func (s *Service) Clear(ctx context.Context, userID string) error {
	if err := s.repo.DeleteCart(ctx, userID); err != nil {
		log.Printf("repo delete cart error: %v", err)
		return err
	}
	s.invalidateCache(userID)
	return nil
}

// Snapshot joins the cart with live catalog data for checkout. Prices in the
// snapshot are undiscounted unit prices; the pricing engine owns discounts.
func (s *Service) Snapshot(ctx context.Context, userID string) (*domain.CartSnapshot, error) {
	cart, err := s.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.CartSnapshot{
		Currency:   s.currency,
		CapturedAt: time.Now(),
	}
	for _, item := range cart.Items {
		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve product %d: %w", item.ProductID, err)
		}
		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}
		snapshot.Items = append(snapshot.Items, domain.CartSnapshotItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Variant:     item.Variant,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			ImageURL:    image,
		})
		snapshot.Subtotal += product.Price * int64(item.Quantity)
	}
	return snapshot, nil
}

func (s *Service) loadForWrite(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.GetCart(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return &domain.Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *Service) save(ctx context.Context, userID string, cart *domain.Cart) (*domain.Cart, error) {
	if err := s.repo.UpsertCart(ctx, cart); err != nil {
		log.Printf("repo upsert cart error: %v", err)
		return nil, err
	}
	s.invalidateCache(userID)
	return cart, nil
}

func (s *Service) invalidateCache(userID string) {
	err := s.cache.Delete(context.Background(), userID)
	if err != nil {
		log.Printf("cache invalidation error: %v", err)
	}
}
