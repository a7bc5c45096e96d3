package client

import (
	"context"
	"time"

	"github.com/enfinitus/onboarding/internal/cache"
	"github.com/enfinitus/onboarding/internal/tariff/domain"
)

// CachingFeed memoizes successful quotes per postal code. Failures are not cached.
type CachingFeed struct {
	next  domain.Feed
	ttl   time.Duration
	cache cache.Cache[string, domain.RegionalQuote]
}

func NewCachingFeed(next domain.Feed, ttl time.Duration) *CachingFeed {
	return &CachingFeed{
		next:  next,
		ttl:   ttl,
		cache: cache.NewTTLCache[string, domain.RegionalQuote](),
	}
}

func (f *CachingFeed) Quote(ctx context.Context, zipCode string) (domain.RegionalQuote, error) {
	zip, err := domain.NormalizeZipCode(zipCode)
	if err != nil {
		return domain.RegionalQuote{}, err
	}
	if quote, ok := f.cache.Get(zip); ok {
		return quote, nil
	}

	quote, err := f.next.Quote(ctx, zip)
	if err != nil {
		return domain.RegionalQuote{}, err
	}
	f.cache.Set(zip, quote, f.ttl)
	return quote, nil
}
