package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type Service interface {
	Upsert(ctx context.Context, req UpsertMarginRequest) (Margin, error)
	List(ctx context.Context, funnelID string) ([]Margin, error)
}

type UpsertMarginRequest struct {
	FunnelID           string          `json:"funnel_id"`
	TariffType         string          `json:"tariff_type"`
	MarginWorkingPrice decimal.Decimal `json:"margin_working_price"`
	MarginBasePrice    decimal.Decimal `json:"margin_base_price"`
}

var (
	ErrInvalidFunnel     = errors.New("invalid_funnel_id")
	ErrInvalidTariffType = errors.New("invalid_tariff_type")
)
