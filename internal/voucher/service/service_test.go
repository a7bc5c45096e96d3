package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/voucher/domain"
	"github.com/enfinitus/onboarding/internal/voucher/repository"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/enfinitus/onboarding/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) domain.Service {
	t.Helper()

	conn, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Voucher{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(Params{
		DB:    conn,
		Log:   zaptest.NewLogger(t),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
}

func strPtr(s string) *string { return &s }

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	valid := domain.CreateVoucherRequest{
		VoucherCode:     "welcome10",
		StartDate:       "2025-01-01",
		EndDate:         "2025-12-31",
		DiscountPercent: decimal.NewFromInt(10),
	}

	tests := []struct {
		name   string
		mutate func(r *domain.CreateVoucherRequest)
		want   error
	}{
		{"empty code", func(r *domain.CreateVoucherRequest) { r.VoucherCode = " " }, domain.ErrInvalidCode},
		{"bad start", func(r *domain.CreateVoucherRequest) { r.StartDate = "01.01.2025" }, domain.ErrInvalidWindow},
		{"end before start", func(r *domain.CreateVoucherRequest) { r.EndDate = "2024-12-31" }, domain.ErrInvalidWindow},
		{"negative amount", func(r *domain.CreateVoucherRequest) { r.WorkingPriceDiscount = decimal.NewFromInt(-1) }, domain.ErrInvalidDiscount},
		{"percent over 100", func(r *domain.CreateVoucherRequest) { r.DiscountPercent = decimal.NewFromInt(101) }, domain.ErrInvalidDiscount},
		{"no discount", func(r *domain.CreateVoucherRequest) { r.DiscountPercent = decimal.Zero }, domain.ErrInvalidDiscount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	created, err := svc.Create(ctx, valid)
	require.NoError(t, err)
	assert.Equal(t, "WELCOME10", created.VoucherCode)
	assert.Nil(t, created.FunnelID)

	_, err = svc.Create(ctx, valid)
	assert.ErrorIs(t, err, domain.ErrDuplicateCode)
}

func TestResolve(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateVoucherRequest{
		VoucherCode:     "WELCOME10",
		StartDate:       "2025-01-01",
		EndDate:         "2025-12-31",
		DiscountPercent: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.CreateVoucherRequest{
		VoucherCode:          "PARTNER5",
		FunnelID:             strPtr("Partner Portal"),
		StartDate:            "2025-01-01",
		EndDate:              "2025-06-30",
		WorkingPriceDiscount: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	march := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

	v, err := svc.Resolve(ctx, " welcome10 ", "enfinitus-website", march)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(10).Equal(v.DiscountPercent))

	v, err = svc.Resolve(ctx, "PARTNER5", "partner-portal", march)
	require.NoError(t, err)
	assert.Equal(t, "partner-portal", *v.FunnelID)

	tests := []struct {
		name     string
		code     string
		funnelID string
		today    time.Time
		want     error
	}{
		{"unknown", "NOPE", "enfinitus-website", march, domain.ErrNotFound},
		{"empty", "", "enfinitus-website", march, domain.ErrNotFound},
		{"expired", "PARTNER5", "partner-portal", time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), domain.ErrExpired},
		{"not started", "WELCOME10", "enfinitus-website", time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), domain.ErrNotYetActive},
		{"funnel mismatch", "PARTNER5", "enfinitus-website", march, domain.ErrFunnelMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Resolve(ctx, tt.code, tt.funnelID, tt.today)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrNotApplicable)
		})
	}
}

func TestList_Paginates(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, code := range []string{"A1", "B2", "C3"} {
		_, err := svc.Create(ctx, domain.CreateVoucherRequest{
			VoucherCode:       code,
			StartDate:         "2025-01-01",
			EndDate:           "2025-12-31",
			BasePriceDiscount: decimal.NewFromInt(1),
		})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, domain.ListVoucherRequest{Pagination: pagination.Pagination{PageSize: 2}})
	require.NoError(t, err)
	require.Len(t, first.Vouchers, 2)
	assert.True(t, first.PageInfo.HasMore)
	assert.Equal(t, "C3", first.Vouchers[0].VoucherCode)

	second, err := svc.List(ctx, domain.ListVoucherRequest{Pagination: pagination.Pagination{PageSize: 2, PageToken: first.PageInfo.NextPageToken}})
	require.NoError(t, err)
	require.Len(t, second.Vouchers, 1)
	assert.False(t, second.PageInfo.HasMore)
	assert.Equal(t, "A1", second.Vouchers[0].VoucherCode)
}
