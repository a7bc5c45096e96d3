package domain

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

//go:generate mockgen -source=feed.go -destination=../mocks/feed_mock.go -package=mocks

// Feed supplies upstream tariff quotes per postal code.
type Feed interface {
	Quote(ctx context.Context, zipCode string) (RegionalQuote, error)
}

var (
	// ErrFeedUnavailable marks a failure to reach the upstream feed.
	ErrFeedUnavailable  = errors.New("tariff_feed_unavailable")
	ErrInvalidZipCode   = errors.New("invalid_zip_code")
	ErrNoQuote          = errors.New("no_quote_for_zip_code")
	ErrTariffNotOffered = errors.New("tariff_not_offered")
)

var zipPattern = regexp.MustCompile(`^[0-9]{5}$`)

// NormalizeZipCode validates a German postal code.
func NormalizeZipCode(zip string) (string, error) {
	zip = strings.TrimSpace(zip)
	if !zipPattern.MatchString(zip) {
		return "", ErrInvalidZipCode
	}
	return zip, nil
}
