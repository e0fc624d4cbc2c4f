package catalog

import (
	"context"
	"testing"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) *SQLiteRepository {
	repo, err := NewSQLiteRepository(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	err = repo.RunMigrations("../../migrations/sqlite")
	require.NoError(t, err)

	seed := []struct {
		name, description, category, section, color string
		price                                       int64
	}{
		{"Canvas Tote", "Everyday canvas tote bag", "totes", "featured", "beige", 1499},
		{"Leather Satchel", "Full grain leather satchel", "satchels", "featured", "brown", 4999},
		{"Nylon Backpack", "Water resistant laptop bag", "backpacks", "new-arrivals", "black", 2799},
		{"Mini Sling", "Compact sling bag", "slings", "new-arrivals", "olive", 999},
	}
	for _, s := range seed {
		_, err := repo.db.Exec(
			`INSERT INTO products (name, description, category, section, color, price, images, rating, specs)
			 VALUES (?, ?, ?, ?, ?, ?, '["a.jpg"]', 4.2, '{"material":"canvas"}')`,
			s.name, s.description, s.category, s.section, s.color, s.price)
		require.NoError(t, err)
	}
	return repo
}

func TestListProducts_NoFilter(t *testing.T) {
	repo := setupTestRepo(t)

	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{})

	require.NoError(t, err)
	assert.Len(t, products, 4)
	assert.Equal(t, "Canvas Tote", products[0].Name)
	assert.Equal(t, int64(1499), products[0].Price)
	assert.Equal(t, []string{"a.jpg"}, products[0].Images)
	assert.Equal(t, map[string]string{"material": "canvas"}, products[0].Specs)
}

func TestListProducts_CategoryFilter(t *testing.T) {
	repo := setupTestRepo(t)

	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{Category: "satchels"})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Leather Satchel", products[0].Name)
}

func TestListProducts_SectionFilter(t *testing.T) {
	repo := setupTestRepo(t)

	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{Section: "new-arrivals"})

	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestListProducts_SearchAndLimit(t *testing.T) {
	repo := setupTestRepo(t)

	products, err := repo.ListProducts(context.Background(), domain.ProductFilter{Search: "bag"})
	require.NoError(t, err)
	assert.Len(t, products, 3) // tote bag, backpack description, sling bag

	products, err = repo.ListProducts(context.Background(), domain.ProductFilter{Search: "bag", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, products, 2)
}

func TestGetProduct(t *testing.T) {
	repo := setupTestRepo(t)

	p, err := repo.GetProduct(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Leather Satchel", p.Name)
	assert.Equal(t, "brown", p.Color)

	_, err = repo.GetProduct(context.Background(), 9999)
	assert.ErrorIs(t, err, ErrProductNotFound)
}
