package domain

import "fmt"

// DiscountPolicy is always passed in explicitly; nothing in the codebase
// reads a global rate. Rate is a fraction, e.g. 0.30 for 30% off.
type DiscountPolicy struct {
	Rate float64
	Code string
}

func NewDiscountPolicy(rate float64, code string) (DiscountPolicy, error) {
	if rate < 0 || rate >= 1 {
		return DiscountPolicy{}, fmt.Errorf("discount rate must be in [0,1), got %v", rate)
	}
	return DiscountPolicy{Rate: rate, Code: code}, nil
}
