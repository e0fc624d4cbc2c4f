package domain

import "time"

// Variant is an optional product variation chosen when the item was added.
// Two cart lines with the same product but different variants stay separate.
type Variant struct {
	Name       string `bson:"name" json:"name"`
	ColorToken string `bson:"color_token" json:"color_token"`
}

type CartItem struct {
	ProductID int64     `bson:"product_id" json:"product_id"`
	Quantity  int       `bson:"quantity" json:"quantity"`
	Variant   *Variant  `bson:"variant,omitempty" json:"variant,omitempty"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

// SameLine reports whether an item belongs to the same cart line:
// identical product and identical variant selection.
func (i CartItem) SameLine(productID int64, variant *Variant) bool {
	if i.ProductID != productID {
		return false
	}
	if i.Variant == nil || variant == nil {
		return i.Variant == variant
	}
	return *i.Variant == *variant
}

type Cart struct {
	ID        string     `bson:"_id,omitempty" json:"-"`
	UserID    string     `bson:"user_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	CreatedAt time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at" json:"updated_at"`
}

func (c *Cart) TotalItems() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}
