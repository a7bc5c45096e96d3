package domain

import (
	"testing"
	"time"

	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func price(working, base string) tariffdomain.Price {
	return tariffdomain.Price{
		WorkingPrice: decimal.RequireFromString(working),
		BasePrice:    decimal.RequireFromString(base),
	}
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		price   tariffdomain.Price
		voucher Voucher
		want    tariffdomain.Price
	}{
		{
			name:    "percent",
			price:   price("32.65", "12.90"),
			voucher: Voucher{DiscountPercent: decimal.NewFromInt(10)},
			want:    price("29.385", "11.61"),
		},
		{
			name:    "absolute",
			price:   price("30", "10"),
			voucher: Voucher{WorkingPriceDiscount: decimal.NewFromInt(2), BasePriceDiscount: decimal.NewFromInt(1)},
			want:    price("28", "9"),
		},
		{
			name:  "percent before absolute",
			price: price("30", "10"),
			voucher: Voucher{
				DiscountPercent:      decimal.NewFromInt(50),
				WorkingPriceDiscount: decimal.NewFromInt(5),
			},
			want: price("10", "5"),
		},
		{
			name:    "discount exceeding price floors at zero",
			price:   price("30", "10"),
			voucher: Voucher{WorkingPriceDiscount: decimal.NewFromInt(45), BasePriceDiscount: decimal.NewFromInt(11)},
			want:    price("0", "0"),
		},
		{
			name:    "full percent",
			price:   price("30", "10"),
			voucher: Voucher{DiscountPercent: decimal.NewFromInt(100)},
			want:    price("0", "0"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.price, tt.voucher)
			assert.True(t, tt.want.WorkingPrice.Equal(got.WorkingPrice), "working price %s", got.WorkingPrice)
			assert.True(t, tt.want.BasePrice.Equal(got.BasePrice), "base price %s", got.BasePrice)
			assert.False(t, got.WorkingPrice.IsNegative())
			assert.False(t, got.BasePrice.IsNegative())
		})
	}
}

func TestDiscount(t *testing.T) {
	got := Discount(price("30", "10"), Voucher{WorkingPriceDiscount: decimal.NewFromInt(45)})
	assert.True(t, decimal.NewFromInt(30).Equal(got.WorkingPrice))
	assert.True(t, got.BasePrice.IsZero())
}

func TestVoucherWindow(t *testing.T) {
	v := Voucher{
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, v.ActiveOn(time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)))
	assert.True(t, v.ActiveOn(time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)))
	assert.False(t, v.ActiveOn(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, v.StartsAfter(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC)))
}
