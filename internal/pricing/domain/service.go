package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"gorm.io/gorm"
)

type Resolver interface {
	Resolve(ctx context.Context, funnelID string, tariffType tariffdomain.TariffType, zipCode string) (Quote, error)
	WithDB(db *gorm.DB) Resolver
}

type SnapshotStore interface {
	Capture(ctx context.Context, db *gorm.DB, quote Quote) (Snapshot, error)
	FindByID(ctx context.Context, id snowflake.ID) (Snapshot, error)
}

var (
	ErrInvalidFunnel    = errors.New("invalid_funnel_id")
	ErrSnapshotNotFound = errors.New("price_snapshot_not_found")
)
