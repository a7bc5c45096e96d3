package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/enfinitus/onboarding/internal/tariff/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const samplePayload = `{
  "region": "Berlin",
  "gridOperator": "Stromnetz Berlin",
  "tariffs": {
    "standard": {"workingPrice": 31.2, "basePrice": "11.50"},
    "green": {"workingPrice": 33.0, "basePrice": 12.5},
    "heatpump": {"workingPrice": 25.0, "basePrice": 10}
  }
}`

func TestHTTPFeed_Quote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/prices", r.URL.Path)
		assert.Equal(t, "10115", r.URL.Query().Get("zip"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL+"/", time.Second, zap.NewNop())
	quote, err := feed.Quote(context.Background(), "10115")
	require.NoError(t, err)

	assert.Equal(t, "Berlin", quote.Region)
	assert.Equal(t, "Stromnetz Berlin", quote.GridOperator)
	assert.Len(t, quote.Tariffs, 2)

	standard, err := quote.Tariff(domain.TariffStandard)
	require.NoError(t, err)
	assert.True(t, standard.WorkingPrice.Equal(decimal.RequireFromString("31.2")))
	assert.True(t, standard.BasePrice.Equal(decimal.RequireFromString("11.50")))

	_, err = quote.Tariff(domain.TariffDynamic)
	assert.ErrorIs(t, err, domain.ErrTariffNotOffered)
}

func TestHTTPFeed_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(samplePayload))
	}))
	defer srv.Close()

	feed := NewHTTPFeed(srv.URL, time.Second, zap.NewNop())
	_, err := feed.Quote(context.Background(), "10115")
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFeed_Errors(t *testing.T) {
	t.Run("not found is permanent", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewHTTPFeed(srv.URL, time.Second, zap.NewNop()).Quote(context.Background(), "99999")
		assert.ErrorIs(t, err, domain.ErrNoQuote)
		assert.NotErrorIs(t, err, domain.ErrFeedUnavailable)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("persistent outage is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := NewHTTPFeed(srv.URL, time.Second, zap.NewNop()).Quote(context.Background(), "10115")
		assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
	})

	t.Run("unreachable host is unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewHTTPFeed(url, 200*time.Millisecond, zap.NewNop()).Quote(context.Background(), "10115")
		assert.ErrorIs(t, err, domain.ErrFeedUnavailable)
	})

	t.Run("invalid zip never calls upstream", func(t *testing.T) {
		_, err := NewHTTPFeed("http://127.0.0.1:1", time.Second, zap.NewNop()).Quote(context.Background(), "ABCDE")
		assert.ErrorIs(t, err, domain.ErrInvalidZipCode)
	})
}
