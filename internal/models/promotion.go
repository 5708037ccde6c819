package models

import "time"

type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// InWindow reports whether now lies in [ValidFrom, ValidTo]
func (p *PromoCode) InWindow(now time.Time) bool {
	return !now.Before(p.ValidFrom) && !now.After(p.ValidTo)
}

// Depleted reports whether the usage cap has been reached
func (p *PromoCode) Depleted() bool {
	return p.UsedCount >= p.UsageLimit
}

// DiscountFor computes the discount the code grants on subtotal.
// Fixed discounts never exceed the subtotal; percentage discounts are capped by MaxDiscount.
func (p *PromoCode) DiscountFor(subtotal int64) int64 {
	if subtotal <= 0 {
		return 0
	}
	switch p.DiscountType {
	case DiscountFixed:
		return min(p.DiscountValue, subtotal)
	case DiscountPercentage:
		discount := subtotal * p.DiscountValue / 100
		if p.MaxDiscount != nil && discount > *p.MaxDiscount {
			discount = *p.MaxDiscount
		}
		return discount
	}
	return 0
}
