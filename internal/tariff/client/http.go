package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/enfinitus/onboarding/internal/tariff/domain"
	"go.uber.org/zap"
)

type priceResponse struct {
	Region       string                  `json:"region"`
	GridOperator string                  `json:"gridOperator"`
	Tariffs      map[string]domain.Price `json:"tariffs"`
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("tariff feed returned status %d", e.code)
}

// HTTPFeed reads regional quotes from GET {baseURL}/prices?zip=<zip>.
type HTTPFeed struct {
	baseURL  string
	client   *http.Client
	log      *zap.Logger
	maxTries uint
	now      func() time.Time
}

func NewHTTPFeed(baseURL string, timeout time.Duration, log *zap.Logger) *HTTPFeed {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPFeed{
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:   &http.Client{Timeout: timeout},
		log:      log.Named("tariff.http_feed"),
		maxTries: 3,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (f *HTTPFeed) Quote(ctx context.Context, zipCode string) (domain.RegionalQuote, error) {
	zip, err := domain.NormalizeZipCode(zipCode)
	if err != nil {
		return domain.RegionalQuote{}, err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second

	body, err := backoff.Retry(ctx, func() (priceResponse, error) {
		return f.fetch(ctx, zip)
	},
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(f.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			f.log.Debug("retrying tariff feed", zap.Error(err), zap.Duration("backoff", next))
		}),
	)
	if err != nil {
		return domain.RegionalQuote{}, classify(err)
	}

	quote := domain.RegionalQuote{
		ZipCode:      zip,
		Region:       body.Region,
		GridOperator: body.GridOperator,
		Tariffs:      make(map[domain.TariffType]domain.Price, len(body.Tariffs)),
		FetchedAt:    f.now(),
	}
	for name, price := range body.Tariffs {
		tariffType, ok := domain.ParseTariffType(name)
		if !ok {
			f.log.Debug("ignoring unknown upstream tariff", zap.String("tariff", name))
			continue
		}
		quote.Tariffs[tariffType] = price
	}
	return quote, nil
}

func (f *HTTPFeed) fetch(ctx context.Context, zip string) (priceResponse, error) {
	endpoint := f.baseURL + "/prices?zip=" + url.QueryEscape(zip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return priceResponse{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return priceResponse{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return priceResponse{}, backoff.Permanent(domain.ErrNoQuote)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError:
		_, _ = io.Copy(io.Discard, resp.Body)
		return priceResponse{}, &statusError{code: resp.StatusCode}
	case resp.StatusCode >= http.StatusBadRequest:
		return priceResponse{}, backoff.Permanent(&statusError{code: resp.StatusCode})
	}

	var body priceResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return priceResponse{}, backoff.Permanent(fmt.Errorf("decode tariff feed response: %w", err))
	}
	return body, nil
}

// classify marks transport failures and upstream outages as ErrFeedUnavailable.
func classify(err error) error {
	if errors.Is(err, domain.ErrNoQuote) {
		return err
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	var se *statusError
	if errors.As(err, &se) && se.code < http.StatusInternalServerError && se.code != http.StatusTooManyRequests {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrFeedUnavailable, err)
}
