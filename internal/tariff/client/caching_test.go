package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/enfinitus/onboarding/internal/tariff/mocks"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachingFeed(t *testing.T) {
	ctrl := gomock.NewController(t)
	upstream := mocks.NewMockFeed(ctrl)

	quote := domain.RegionalQuote{ZipCode: "10115", Region: "Berlin"}
	upstream.EXPECT().Quote(gomock.Any(), "10115").Return(quote, nil).Times(1)
	upstream.EXPECT().Quote(gomock.Any(), "20095").Return(domain.RegionalQuote{}, errors.New("down")).Times(2)

	feed := NewCachingFeed(upstream, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := feed.Quote(context.Background(), " 10115")
		require.NoError(t, err)
		assert.Equal(t, "Berlin", got.Region)
	}

	_, err := feed.Quote(context.Background(), "20095")
	assert.Error(t, err)
	_, err = feed.Quote(context.Background(), "20095")
	assert.Error(t, err)
}

func TestStaticFeed(t *testing.T) {
	feed := NewStaticFeed(nil)

	quote, err := feed.Quote(context.Background(), "10115")
	require.NoError(t, err)
	assert.Equal(t, "Berlin/Brandenburg", quote.Region)

	standard, err := quote.Tariff(domain.TariffStandard)
	require.NoError(t, err)
	// 32.50 list price + 1 * 0.15 grid surcharge
	assert.True(t, standard.WorkingPrice.Equal(decimal.RequireFromString("32.65")), standard.WorkingPrice.String())
	assert.True(t, standard.BasePrice.Equal(decimal.RequireFromString("12.90")))

	_, err = feed.Quote(context.Background(), "1011")
	assert.ErrorIs(t, err, domain.ErrInvalidZipCode)
}
