package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Voucher is a marketing campaign discount code. The window is inclusive on
// both dates; a nil FunnelID applies to every funnel.
type Voucher struct {
	ID                   snowflake.ID    `gorm:"primaryKey" json:"id"`
	VoucherCode          string          `gorm:"not null;uniqueIndex" json:"voucher_code"`
	FunnelID             *string         `gorm:"index" json:"funnel_id,omitempty"`
	StartDate            time.Time       `gorm:"not null" json:"start_date"`
	EndDate              time.Time       `gorm:"not null" json:"end_date"`
	WorkingPriceDiscount decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0" json:"working_price_discount"`
	BasePriceDiscount    decimal.Decimal `gorm:"type:numeric(12,4);not null;default:0" json:"base_price_discount"`
	DiscountPercent      decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`
	CreatedAt            time.Time       `gorm:"not null" json:"created_at"`
}

func (Voucher) TableName() string { return "marketing_campaigns" }

// ActiveOn reports whether day falls within the voucher window.
func (v Voucher) ActiveOn(day time.Time) bool {
	d := truncateDay(day)
	return !d.Before(truncateDay(v.StartDate)) && !d.After(truncateDay(v.EndDate))
}

func (v Voucher) StartsAfter(day time.Time) bool {
	return truncateDay(v.StartDate).After(truncateDay(day))
}

// AppliesToFunnel reports whether the voucher is valid for funnelID.
func (v Voucher) AppliesToFunnel(funnelID string) bool {
	return v.FunnelID == nil || *v.FunnelID == "" || *v.FunnelID == funnelID
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
