package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/shopspring/decimal"
)

// Quote is a resolved final price for a funnel, tariff type and postal code.
type Quote struct {
	FunnelID     string
	TariffType   tariffdomain.TariffType
	ZipCode      string
	Region       string
	GridOperator string
	Upstream     tariffdomain.Price
	Margin       tariffdomain.Price
	Final        tariffdomain.Price
	// MarginFound is false when no margin row existed and zero was used.
	MarginFound bool
}

// Snapshot freezes a quote at import time. Rows are never updated.
type Snapshot struct {
	ID                   snowflake.ID            `gorm:"primaryKey" json:"id"`
	FunnelID             string                  `gorm:"not null;index" json:"funnel_id"`
	TariffType           tariffdomain.TariffType `gorm:"type:varchar(16);not null" json:"tariff_type"`
	ZipCode              string                  `gorm:"type:varchar(5);not null" json:"zip_code"`
	UpstreamWorkingPrice decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"upstream_working_price"`
	UpstreamBasePrice    decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"upstream_base_price"`
	MarginWorkingPrice   decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"margin_working_price"`
	MarginBasePrice      decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"margin_base_price"`
	FinalWorkingPrice    decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"final_working_price"`
	FinalBasePrice       decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"final_base_price"`
	Region               string                  `json:"region"`
	GridOperator         string                  `json:"grid_operator"`
	CapturedAt           time.Time               `gorm:"not null" json:"captured_at"`
}

func (Snapshot) TableName() string { return "price_snapshots" }

func (s Snapshot) FinalPrice() tariffdomain.Price {
	return tariffdomain.Price{WorkingPrice: s.FinalWorkingPrice, BasePrice: s.FinalBasePrice}
}
