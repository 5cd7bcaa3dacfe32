// Package pricing computes booking quotes, traveler counts and start-date
// availability for a package.
package pricing

import (
	"math"
)

// RoundingPolicy selects where the discounted price is rounded.
type RoundingPolicy int

const (
	// RoundUnit rounds the discounted per-traveler price, then multiplies.
	RoundUnit RoundingPolicy = iota
	// RoundTotal multiplies first and rounds the total once.
	RoundTotal
)

func (p RoundingPolicy) String() string {
	switch p {
	case RoundUnit:
		return "round_unit"
	case RoundTotal:
		return "round_total"
	default:
		return "unknown"
	}
}

// Quote is the price breakdown for a booking.
type Quote struct {
	Travelers       int     `json:"travelers"`
	BasePrice       float64 `json:"base_price"`
	DiscountPercent float64 `json:"discount_percent"`
	DiscountedUnit  float64 `json:"discounted_unit"`
	OriginalTotal   float64 `json:"original_total"`
	DiscountedTotal float64 `json:"discounted_total"`
	Savings         float64 `json:"savings"`
}

// Calculate quotes basePrice for travelers with the default RoundUnit
// policy. A nil discount is 0%.
func Calculate(basePrice float64, discountPercent *float64, travelers int) Quote {
	return CalculateWith(RoundUnit, basePrice, discountPercent, travelers)
}

// CalculateWith quotes under an explicit rounding policy. Rounding is half
// away from zero, which for non-negative prices is ordinary arithmetic
// rounding.
func CalculateWith(policy RoundingPolicy, basePrice float64, discountPercent *float64, travelers int) Quote {
	d := 0.0
	if discountPercent != nil {
		d = *discountPercent
	}
	factor := 1 - d/100
	n := float64(travelers)

	q := Quote{
		Travelers:       travelers,
		BasePrice:       basePrice,
		DiscountPercent: d,
		DiscountedUnit:  math.Round(basePrice * factor),
		OriginalTotal:   basePrice * n,
	}
	switch policy {
	case RoundTotal:
		q.DiscountedTotal = math.Round(basePrice * factor * n)
	default:
		q.DiscountedTotal = q.DiscountedUnit * n
	}
	q.Savings = q.OriginalTotal - q.DiscountedTotal
	return q
}

// DiscountedUnitPrice is the rounded per-traveler price after discount.
func DiscountedUnitPrice(basePrice float64, discountPercent *float64) float64 {
	return Calculate(basePrice, discountPercent, 1).DiscountedUnit
}
