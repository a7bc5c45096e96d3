package ratelimit

import (
	"context"
	"errors"
	"time"
)

var ErrRateLimited = errors.New("rate_limited")

type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits one request per call for the given key.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}
