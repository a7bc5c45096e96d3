package domain

import (
	"context"

	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"gorm.io/gorm"
)

type Repository interface {
	Find(ctx context.Context, db *gorm.DB, funnelID string, tariffType tariffdomain.TariffType) (*Margin, error)
	Upsert(ctx context.Context, db *gorm.DB, margin *Margin) error
	List(ctx context.Context, db *gorm.DB, funnelID string) ([]Margin, error)
}
