package domain

import "time"

// Product prices are whole currency units; the store does not use
// fractional amounts anywhere.
type Product struct {
	ID          int64
	Name        string
	Description string
	Category    string
	Section     string
	Color       string
	Price       int64
	Images      []string
	Rating      float64
	Specs       map[string]string
	CreatedAt   time.Time
}

// ProductFilter narrows a catalog listing. Zero values mean "no constraint";
// Limit <= 0 returns everything.
type ProductFilter struct {
	Category string
	Section  string
	Search   string
	Limit    int
}
