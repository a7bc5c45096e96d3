package domain

import (
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Apply discounts price by the voucher. The percentage is applied first, then
// the absolute amounts. Each component is floored at zero.
func Apply(price tariffdomain.Price, v Voucher) tariffdomain.Price {
	factor := decimal.NewFromInt(1)
	if v.DiscountPercent.IsPositive() {
		factor = hundred.Sub(v.DiscountPercent).Div(hundred)
	}

	return tariffdomain.Price{
		WorkingPrice: floorZero(price.WorkingPrice.Mul(factor).Sub(v.WorkingPriceDiscount)),
		BasePrice:    floorZero(price.BasePrice.Mul(factor).Sub(v.BasePriceDiscount)),
	}
}

// Discount is the amount removed from price by Apply.
func Discount(price tariffdomain.Price, v Voucher) tariffdomain.Price {
	discounted := Apply(price, v)
	return tariffdomain.Price{
		WorkingPrice: price.WorkingPrice.Sub(discounted.WorkingPrice),
		BasePrice:    price.BasePrice.Sub(discounted.BasePrice),
	}
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
