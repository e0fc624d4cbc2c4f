// Package pricing derives the amounts shown at checkout. The same function
// feeds the review screen, the gateway order-handle creation and the
// persisted order, so the three can never disagree.
package pricing

import (
	"math"

	"github.com/DMHCAIT/Bag-kibana-sub000/internal/domain"
)

type Totals struct {
	OriginalSubtotal   int64 `json:"original_subtotal"`
	DiscountedSubtotal int64 `json:"discounted_subtotal"`
	DiscountAmount     int64 `json:"discount_amount"`
	ShippingFee        int64 `json:"shipping_fee"`
	Total              int64 `json:"total"`
}

// DiscountedUnitPrice is the per-unit display price for order lines. Totals
// are NOT the sum of these: lines round individually, totals round once on
// the aggregate.
func DiscountedUnitPrice(unitPrice int64, policy domain.DiscountPolicy) int64 {
	return int64(math.Round(float64(unitPrice) * (1 - policy.Rate)))
}

// ComputeTotals applies the discount policy to a cart snapshot.
//
// Rounding happens once on the aggregate, not per line. The discount amount
// is derived as the difference, so original == discounted + discount holds
// exactly for every cart.
func ComputeTotals(snapshot domain.CartSnapshot, policy domain.DiscountPolicy) Totals {
	var original int64
	for _, item := range snapshot.Items {
		original += item.UnitPrice * int64(item.Quantity)
	}

	discounted := int64(math.Round(float64(original) * (1 - policy.Rate)))
	var shipping int64 // free shipping, unconditionally

	return Totals{
		OriginalSubtotal:   original,
		DiscountedSubtotal: discounted,
		DiscountAmount:     original - discounted,
		ShippingFee:        shipping,
		Total:              discounted + shipping,
	}
}
