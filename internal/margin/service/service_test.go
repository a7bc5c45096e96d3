package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/margin/domain"
	"github.com/enfinitus/onboarding/internal/margin/repository"
	tariffdomain "github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB, *clock.FakeClock) {
	t.Helper()

	conn, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Margin{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	fake := clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))

	svc := New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, conn, fake
}

func TestUpsert_InsertThenUpdate(t *testing.T) {
	svc, conn, fake := newTestService(t)
	ctx := context.Background()

	first, err := svc.Upsert(ctx, domain.UpsertMarginRequest{
		FunnelID:           "Enfinitus Website",
		TariffType:         "standard",
		MarginWorkingPrice: decimal.RequireFromString("1.5"),
		MarginBasePrice:    decimal.RequireFromString("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, "enfinitus-website", first.FunnelID)
	assert.Equal(t, tariffdomain.TariffStandard, first.TariffType)

	fake.Advance(time.Hour)
	second, err := svc.Upsert(ctx, domain.UpsertMarginRequest{
		FunnelID:           "enfinitus-website",
		TariffType:         "STANDARD",
		MarginWorkingPrice: decimal.RequireFromString("2.25"),
		MarginBasePrice:    decimal.RequireFromString("2"),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, decimal.RequireFromString("2.25").Equal(second.MarginWorkingPrice))

	var count int64
	require.NoError(t, conn.Model(&domain.Margin{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsert_Validation(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Upsert(ctx, domain.UpsertMarginRequest{FunnelID: " ", TariffType: "GREEN"})
	assert.ErrorIs(t, err, domain.ErrInvalidFunnel)

	_, err = svc.Upsert(ctx, domain.UpsertMarginRequest{FunnelID: "web", TariffType: "heatpump"})
	assert.ErrorIs(t, err, domain.ErrInvalidTariffType)
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, req := range []domain.UpsertMarginRequest{
		{FunnelID: "web", TariffType: "GREEN", MarginWorkingPrice: decimal.NewFromInt(1)},
		{FunnelID: "web", TariffType: "DYNAMIC", MarginWorkingPrice: decimal.NewFromInt(1)},
		{FunnelID: "partner", TariffType: "GREEN", MarginWorkingPrice: decimal.NewFromInt(1)},
	} {
		_, err := svc.Upsert(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	web, err := svc.List(ctx, "web")
	require.NoError(t, err)
	require.Len(t, web, 2)
	assert.Equal(t, tariffdomain.TariffDynamic, web[0].TariffType)
}
