package marketplace

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// RateSource defines the conversion rate source operations to enable mocking
//
//go:generate mockgen -source=rate.go -destination=../../mocks/rate_source.go -package=mocks -mock_names=RateSource=MockRateSource
type RateSource interface {
	// GetLatestRates fetches the latest common-unit rate of every payment currency
	GetLatestRates(ctx context.Context) (domain.Rates, error)
}

type rateClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewRateSource creates a new conversion rate source client
func NewRateSource(httpClient adapter.HTTPClient, baseURL string) RateSource {
	return &rateClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *rateClient) GetLatestRates(ctx context.Context) (domain.Rates, error) {
	var resp response[map[domain.Currency]decimal.Decimal]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "rates", "latest"), &resp); err != nil {
		return nil, wrapError("get latest rates", err)
	}

	rates := make(domain.Rates, len(resp.Result))
	for currency, rate := range resp.Result {
		if !rate.IsPositive() {
			return nil, fmt.Errorf("failed to get latest rates: %w: non-positive rate for %s", domain.ErrUpstreamUnavailable, currency)
		}
		rates[currency] = rate
	}
	return rates, nil
}
