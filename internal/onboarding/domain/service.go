package domain

import (
	"context"
	"errors"
	"time"

	campaigndomain "github.com/enfinitus/onboarding/internal/campaign/domain"
)

type Service interface {
	// Import turns an order into a contract draft with its market location
	// draft and schedules verification. It returns before verification runs.
	Import(ctx context.Context, req ImportRequest) (ImportResult, error)
	// RecoverStale settles sagas interrupted for longer than olderThan and
	// reports how many it touched.
	RecoverStale(ctx context.Context, olderThan time.Duration) (int, error)
}

const (
	ContractIDPrefix = "CT-"
	DegradedIDPrefix = "MOCK-"
)

var (
	ErrInvalidFunnel           = errors.New("invalid_funnel_id")
	ErrInvalidTariffID         = errors.New("invalid_tariff_id")
	ErrInvalidConsumption      = errors.New("invalid_estimated_consumption")
	ErrInvalidDesiredStartDate = errors.New("invalid_desired_start_date")

	ErrUnresolvableTariff = campaigndomain.ErrUnresolvableTariff
	ErrCampaignNotFound   = campaigndomain.ErrNotFound

	// ErrIntegrity wraps a failure that forced the import to be compensated.
	ErrIntegrity = errors.New("onboarding_integrity_failure")
)
