package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TariffType string

const (
	TariffStandard TariffType = "STANDARD"
	TariffGreen    TariffType = "GREEN"
	TariffDynamic  TariffType = "DYNAMIC"
)

var tariffTypes = []TariffType{TariffStandard, TariffGreen, TariffDynamic}

func TariffTypes() []TariffType {
	return append([]TariffType(nil), tariffTypes...)
}

// ParseTariffType accepts the canonical upper-case names only.
func ParseTariffType(value string) (TariffType, bool) {
	candidate := TariffType(strings.ToUpper(strings.TrimSpace(value)))
	for _, t := range tariffTypes {
		if t == candidate {
			return t, true
		}
	}
	return "", false
}

// Price is a pair of working price (ct/kWh) and base price (currency/month).
type Price struct {
	WorkingPrice decimal.Decimal `json:"workingPrice"`
	BasePrice    decimal.Decimal `json:"basePrice"`
}

func (p Price) Add(other Price) Price {
	return Price{
		WorkingPrice: p.WorkingPrice.Add(other.WorkingPrice),
		BasePrice:    p.BasePrice.Add(other.BasePrice),
	}
}

// RegionalQuote is the upstream supplier offer for one postal code.
type RegionalQuote struct {
	ZipCode      string
	Region       string
	GridOperator string
	Tariffs      map[TariffType]Price
	FetchedAt    time.Time
}

func (q RegionalQuote) Tariff(t TariffType) (Price, error) {
	price, ok := q.Tariffs[t]
	if !ok {
		return Price{}, ErrTariffNotOffered
	}
	return price, nil
}
