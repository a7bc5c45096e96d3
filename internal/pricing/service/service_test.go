package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	margindomain "github.com/enfinitus/onboarding/internal/margin/domain"
	marginrepo "github.com/enfinitus/onboarding/internal/margin/repository"
	"github.com/enfinitus/onboarding/internal/pricing/domain"
	"github.com/enfinitus/onboarding/internal/pricing/repository"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/enfinitus/onboarding/internal/tariff/mocks"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type fixture struct {
	db       *gorm.DB
	feed     *mocks.MockFeed
	resolver domain.Resolver
	store    domain.SnapshotStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	conn, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&margindomain.Margin{}, &domain.Snapshot{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	log := zaptest.NewLogger(t)
	feed := mocks.NewMockFeed(gomock.NewController(t))

	return fixture{
		db:   conn,
		feed: feed,
		resolver: NewResolver(ResolverParams{
			DB:         conn,
			Log:        log,
			Feed:       feed,
			MarginRepo: marginrepo.Provide(),
		}),
		store: NewSnapshotStore(SnapshotParams{
			DB:    conn,
			Log:   log,
			GenID: node,
			Clock: clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
			Repo:  repository.Provide(),
		}),
	}
}

func berlinQuote() tariffdomain.RegionalQuote {
	return tariffdomain.RegionalQuote{
		ZipCode:      "10115",
		Region:       "Berlin",
		GridOperator: "Stromnetz Berlin",
		Tariffs: map[tariffdomain.TariffType]tariffdomain.Price{
			tariffdomain.TariffStandard: {WorkingPrice: decimal.RequireFromString("32.65"), BasePrice: decimal.RequireFromString("12.90")},
		},
	}
}

func insertMargin(t *testing.T, conn *gorm.DB, id int64, working, base string) {
	t.Helper()
	require.NoError(t, conn.Create(&margindomain.Margin{
		ID:                 snowflake.ID(id),
		FunnelID:           "enfinitus-website",
		TariffType:         tariffdomain.TariffStandard,
		MarginWorkingPrice: decimal.RequireFromString(working),
		MarginBasePrice:    decimal.RequireFromString(base),
		UpdatedAt:          time.Now().UTC(),
	}).Error)
}

func TestResolve_AddsMargin(t *testing.T) {
	f := newFixture(t)
	insertMargin(t, f.db, 1, "1.35", "2.10")
	f.feed.EXPECT().Quote(gomock.Any(), "10115").Return(berlinQuote(), nil)

	quote, err := f.resolver.Resolve(context.Background(), "Enfinitus Website", tariffdomain.TariffStandard, "10115")
	require.NoError(t, err)

	assert.True(t, quote.MarginFound)
	assert.Equal(t, "enfinitus-website", quote.FunnelID)
	assert.Equal(t, "Berlin", quote.Region)
	assert.True(t, decimal.RequireFromString("34").Equal(quote.Final.WorkingPrice), quote.Final.WorkingPrice.String())
	assert.True(t, decimal.RequireFromString("15").Equal(quote.Final.BasePrice), quote.Final.BasePrice.String())
}

func TestResolve_MissingMarginUsesZero(t *testing.T) {
	f := newFixture(t)
	f.feed.EXPECT().Quote(gomock.Any(), "10115").Return(berlinQuote(), nil)

	quote, err := f.resolver.Resolve(context.Background(), "enfinitus-website", tariffdomain.TariffStandard, "10115")
	require.NoError(t, err)

	assert.False(t, quote.MarginFound)
	assert.True(t, quote.Upstream.WorkingPrice.Equal(quote.Final.WorkingPrice))
	assert.True(t, quote.Upstream.BasePrice.Equal(quote.Final.BasePrice))
}

func TestResolve_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.feed.EXPECT().Quote(gomock.Any(), "10115").
		Return(tariffdomain.RegionalQuote{}, fmt.Errorf("%w: timeout", tariffdomain.ErrFeedUnavailable))
	_, err := f.resolver.Resolve(ctx, "web", tariffdomain.TariffStandard, "10115")
	assert.ErrorIs(t, err, tariffdomain.ErrFeedUnavailable)

	f.feed.EXPECT().Quote(gomock.Any(), "10115").Return(berlinQuote(), nil)
	_, err = f.resolver.Resolve(ctx, "web", tariffdomain.TariffDynamic, "10115")
	assert.ErrorIs(t, err, tariffdomain.ErrTariffNotOffered)

	_, err = f.resolver.Resolve(ctx, "  ", tariffdomain.TariffStandard, "10115")
	assert.ErrorIs(t, err, domain.ErrInvalidFunnel)
}

func TestSnapshot_IsNotAffectedByLaterMarginChanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	insertMargin(t, f.db, 1, "1.35", "2.10")
	f.feed.EXPECT().Quote(gomock.Any(), "10115").Return(berlinQuote(), nil).Times(2)

	quote, err := f.resolver.Resolve(ctx, "enfinitus-website", tariffdomain.TariffStandard, "10115")
	require.NoError(t, err)
	captured, err := f.store.Capture(ctx, nil, quote)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&margindomain.Margin{}).
		Where("funnel_id = ?", "enfinitus-website").
		Update("margin_working_price", decimal.RequireFromString("5")).Error)

	requote, err := f.resolver.Resolve(ctx, "enfinitus-website", tariffdomain.TariffStandard, "10115")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("37.65").Equal(requote.Final.WorkingPrice))

	stored, err := f.store.FindByID(ctx, captured.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("34").Equal(stored.FinalWorkingPrice), stored.FinalWorkingPrice.String())
	assert.True(t, decimal.RequireFromString("1.35").Equal(stored.MarginWorkingPrice))
	assert.Equal(t, "Stromnetz Berlin", stored.GridOperator)
}

func TestSnapshot_FindByIDMissing(t *testing.T) {
	f := newFixture(t)

	_, err := f.store.FindByID(context.Background(), snowflake.ID(42))
	assert.True(t, errors.Is(err, domain.ErrSnapshotNotFound))
}
