package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/shopspring/decimal"
)

// Campaign is a published tariff offer. Prices are list prices used when no
// upstream quote is available.
type Campaign struct {
	ID           snowflake.ID            `gorm:"primaryKey" json:"id"`
	Key          string                  `gorm:"not null;uniqueIndex" json:"key"`
	Name         string                  `gorm:"not null" json:"name"`
	TariffType   tariffdomain.TariffType `gorm:"type:varchar(16);not null" json:"tariff_type"`
	WorkingPrice decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"working_price"`
	BasePrice    decimal.Decimal         `gorm:"type:numeric(12,4);not null" json:"base_price"`
	Published    bool                    `gorm:"not null;default:false" json:"published"`
	CreatedAt    time.Time               `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time               `gorm:"not null" json:"updated_at"`
}

// Resolution is the campaign and tariff type an order maps to.
type Resolution struct {
	Campaign   Campaign
	TariffType tariffdomain.TariffType
	// MatchedByKey is set when the request's campaign key selected the campaign.
	MatchedByKey bool
}
