package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type ListCampaignRequest struct {
	PublishedOnly bool
}

type ResolveRequest struct {
	TariffID    string
	CampaignKey string
}

type Service interface {
	List(ctx context.Context, req ListCampaignRequest) ([]Campaign, error)
	GetByKey(ctx context.Context, key string) (Campaign, error)
	Resolve(ctx context.Context, req ResolveRequest) (Resolution, error)
	WithDB(db *gorm.DB) Service
}

var (
	ErrNotFound           = errors.New("campaign_not_found")
	ErrUnresolvableTariff = errors.New("unresolvable_tariff")
)
