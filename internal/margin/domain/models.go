package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/shopspring/decimal"
)

// Margin is the funnel specific surcharge added to the upstream price.
type Margin struct {
	ID                 snowflake.ID            `gorm:"primaryKey" json:"id"`
	FunnelID           string                  `gorm:"not null;uniqueIndex:ux_funnel_margins_funnel_tariff" json:"funnel_id"`
	TariffType         tariffdomain.TariffType `gorm:"type:varchar(16);not null;uniqueIndex:ux_funnel_margins_funnel_tariff" json:"tariff_type"`
	MarginWorkingPrice decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"margin_working_price"`
	MarginBasePrice    decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"margin_base_price"`
	UpdatedAt          time.Time               `gorm:"not null" json:"updated_at"`
}

func (Margin) TableName() string { return "funnel_margins" }

func (m Margin) Price() tariffdomain.Price {
	return tariffdomain.Price{WorkingPrice: m.MarginWorkingPrice, BasePrice: m.MarginBasePrice}
}
