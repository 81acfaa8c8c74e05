package marketplace

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/feral-file/ff-market-sync/internal/domain"
)

const latestRatesKey = "latest"

// cachedRateSource serves rates from a short-lived cache, collapsing concurrent misses into one fetch
type cachedRateSource struct {
	source RateSource
	cache  *expirable.LRU[string, domain.Rates]
	group  singleflight.Group
}

// NewCachedRateSource wraps source with a cache holding the latest rates for ttl
func NewCachedRateSource(source RateSource, ttl time.Duration) RateSource {
	return &cachedRateSource{
		source: source,
		cache:  expirable.NewLRU[string, domain.Rates](1, nil, ttl),
	}
}

func (c *cachedRateSource) GetLatestRates(ctx context.Context) (domain.Rates, error) {
	if rates, ok := c.cache.Get(latestRatesKey); ok {
		return rates, nil
	}

	// the fetch is shared by every coalesced caller, so it must outlive the first caller's cancellation
	fetchCtx := context.WithoutCancel(ctx)
	v, err, _ := c.group.Do(latestRatesKey, func() (any, error) {
		rates, err := c.source.GetLatestRates(fetchCtx)
		if err != nil {
			return nil, err
		}
		c.cache.Add(latestRatesKey, rates)
		return rates, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.Rates), nil
}
