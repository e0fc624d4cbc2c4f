package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/cart/cache"
	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepository struct {
	m    sync.RWMutex
	cart *domain.Cart
	err  error
}

func (m *mockRepository) GetCart(context.Context, string) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.cart == nil {
		return nil, ErrCartNotFound
	}
	return m.cart, nil
}

func (m *mockRepository) UpsertCart(_ context.Context, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = c
	return nil
}

func (m *mockRepository) DeleteCart(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = nil
	return nil
}

type mockCache struct {
	m       sync.Mutex
	cart    *domain.Cart
	deletes int
}

func (m *mockCache) Get(context.Context, string) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.cart == nil {
		return nil, cache.ErrCacheMiss
	}
	return m.cart, nil
}

func (m *mockCache) Set(_ context.Context, _ string, c *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = c
	return nil
}

func (m *mockCache) Delete(context.Context, string) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.cart = nil
	m.deletes++
	return nil
}

type mockCatalog struct {
	products map[int64]*domain.Product
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, errors.New("product not found")
	}
	return p, nil
}

func newTestService(repo *mockRepository, c *mockCache) *Service {
	cat := &mockCatalog{products: map[int64]*domain.Product{
		1: {ID: 1, Name: "Canvas Tote", Price: 1499, Images: []string{"tote.jpg"}},
		2: {ID: 2, Name: "Leather Satchel", Price: 4999, Images: []string{"satchel.jpg"}},
	}}
	return NewService(repo, c, cat, "INR")
}

func TestGetCart_EmptyWhenMissing(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockCache{})

	cart, err := svc.GetCart(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Equal(t, "user-1", cart.UserID)
	assert.Empty(t, cart.Items)
	assert.Equal(t, 0, cart.TotalItems())
}

func TestAddItem_NewAndMergedLines(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &mockCache{})
	ctx := context.Background()

	variant := &domain.Variant{Name: "Large", ColorToken: "#8b5a2b"}

	cart, err := svc.AddItem(ctx, "user-1", 1, 2, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)

	// same product, different variant => separate line
	cart, err = svc.AddItem(ctx, "user-1", 1, 1, variant)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)

	// same product+variant => merged quantity
	cart, err = svc.AddItem(ctx, "user-1", 1, 3, variant)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 4, cart.Items[1].Quantity)
	assert.Equal(t, 6, cart.TotalItems())

	// merging never pushes a line past the cap
	cart, err = svc.AddItem(ctx, "user-1", 1, 98, variant)
	require.NoError(t, err)
	assert.Equal(t, maxLineQuantity, cart.Items[1].Quantity)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	svc := newTestService(&mockRepository{}, &mockCache{})

	_, err := svc.AddItem(context.Background(), "user-1", 999, 1, nil)

	assert.Error(t, err)
}

func TestUpdateQuantity(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &mockCache{})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", 1, 2, nil)
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "user-1", 1, nil, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	_, err = svc.UpdateQuantity(ctx, "user-1", 2, nil, 5)
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestRemoveItem(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &mockCache{})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", 1, 1, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", 2, 1, nil)
	require.NoError(t, err)

	cart, err := svc.RemoveItem(ctx, "user-1", 1, nil)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, int64(2), cart.Items[0].ProductID)
}

func TestClear_InvalidatesCache(t *testing.T) {
	repo := &mockRepository{}
	c := &mockCache{}
	svc := newTestService(repo, c)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", 1, 1, nil)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, "user-1"))
	assert.Nil(t, repo.cart)
	assert.Greater(t, c.deletes, 0)
}

func TestSnapshot_JoinsCatalogData(t *testing.T) {
	repo := &mockRepository{}
	svc := newTestService(repo, &mockCache{})
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "user-1", 1, 2, nil)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "user-1", 2, 1, nil)
	require.NoError(t, err)

	snapshot, err := svc.Snapshot(ctx, "user-1")
	require.NoError(t, err)

	require.Len(t, snapshot.Items, 2)
	assert.Equal(t, "Canvas Tote", snapshot.Items[0].ProductName)
	assert.Equal(t, int64(1499), snapshot.Items[0].UnitPrice)
	assert.Equal(t, "tote.jpg", snapshot.Items[0].ImageURL)
	assert.Equal(t, int64(1499*2+4999), snapshot.Subtotal)
	assert.Equal(t, "INR", snapshot.Currency)
	assert.False(t, snapshot.Empty())
}
