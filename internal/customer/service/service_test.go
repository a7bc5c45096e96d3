package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/enfinitus/onboarding/internal/clock"
	"github.com/enfinitus/onboarding/internal/customer/domain"
	"github.com/enfinitus/onboarding/internal/customer/repository"
	"github.com/enfinitus/onboarding/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	conn, err := db.OpenMemory(t.Name())
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&domain.Customer{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return &Service{
		db:    conn,
		log:   zaptest.NewLogger(t),
		genID: node,
		clock: clock.NewFakeClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		repo:  repository.Provide(),
	}
}

func TestEnsureByEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	req := domain.EnsureCustomerRequest{
		Email:     "  Max.Mustermann@Example.de ",
		FirstName: "Max",
		LastName:  "Mustermann",
		ZipCode:   "10115",
		City:      "Berlin",
	}

	first, created, err := svc.EnsureByEmail(ctx, req)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "max.mustermann@example.de", first.Email)

	t.Run("second import reuses the customer", func(t *testing.T) {
		again, created, err := svc.EnsureByEmail(ctx, req)
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.ID, again.ID)
	})

	t.Run("lookup by id", func(t *testing.T) {
		got, err := svc.GetByID(ctx, first.ID.String())
		require.NoError(t, err)
		assert.Equal(t, "Berlin", got.City)
	})
}

func TestEnsureByEmail_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	tests := []struct {
		name string
		req  domain.EnsureCustomerRequest
		want error
	}{
		{"empty email", domain.EnsureCustomerRequest{FirstName: "A", LastName: "B"}, domain.ErrInvalidEmail},
		{"malformed email", domain.EnsureCustomerRequest{Email: "not-an-email", FirstName: "A", LastName: "B"}, domain.ErrInvalidEmail},
		{"missing name", domain.EnsureCustomerRequest{Email: "a@b.de"}, domain.ErrInvalidName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.EnsureByEmail(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestGetByID_Errors(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GetByID(context.Background(), "abc")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(context.Background(), "123456")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
