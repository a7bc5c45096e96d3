package ratelimit

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/time/rate"
)

// Local keeps the buckets in process. Used when Redis is not configured.
type Local struct {
	mu      sync.Mutex
	rate    rate.Limit
	burst   int
	buckets map[string]*rate.Limiter
}

func NewLocal(perSecond float64, burst int) *Local {
	return &Local{
		rate:    rate.Limit(perSecond),
		burst:   burst,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (l *Local) Allow(_ context.Context, key string) (Result, error) {
	if key == "" {
		return Result{}, errors.New("rate limiter key is empty")
	}

	l.mu.Lock()
	bucket, ok := l.buckets[key]
	if !ok {
		bucket = rate.NewLimiter(l.rate, l.burst)
		l.buckets[key] = bucket
	}
	l.mu.Unlock()

	res := Result{Limit: l.burst}
	if bucket.Allow() {
		res.Allowed = true
		res.Remaining = int(bucket.Tokens())
		return res, nil
	}
	tokens := bucket.Tokens()
	res.RetryAfter = retryAfter(tokens, float64(l.rate))
	return res, nil
}
