// Package query serves filtered, sorted and paginated token listings from the aggregate store.
package query

import (
	"context"
	"fmt"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/providers/marketplace"
	"github.com/feral-file/ff-market-sync/internal/store"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

// TokenWithEditions is a listed token with all its editions
type TokenWithEditions struct {
	Token    schema.Token
	Editions []schema.Edition
}

// TokenPage is one page of a token listing
type TokenPage struct {
	Items   []TokenWithEditions
	Total   uint64
	Page    int
	PerPage int
	HasMore bool
}

// Engine defines the token listing operations
//
//go:generate mockgen -source=engine.go -destination=../mocks/query_engine.go -package=mocks -mock_names=Engine=MockQueryEngine
type Engine interface {
	// ListTokens returns one page of tokens. Invalid requests fail with domain.ErrInvalidQuery before any store access.
	ListTokens(ctx context.Context, page Pagination, filter Filter, sort SortKey, caller domain.Caller) (*TokenPage, error)
}

type engine struct {
	store store.Store
	rates marketplace.RateSource
	clock adapter.Clock
	pool  pond.Pool
}

// NewEngine creates a new query engine. rates should be cached, it is read on every price sort.
func NewEngine(st store.Store, rates marketplace.RateSource, clock adapter.Clock, concurrency int) Engine {
	if concurrency <= 0 {
		concurrency = 32
	}
	return &engine{
		store: st,
		rates: rates,
		clock: clock,
		pool:  pond.NewPool(concurrency),
	}
}

func (e *engine) ListTokens(ctx context.Context, page Pagination, filter Filter, sort SortKey, caller domain.Caller) (*TokenPage, error) {
	if sort == "" {
		sort = DefaultSort
	}
	if err := Validate(page, &filter, sort); err != nil {
		return nil, err
	}

	var rates domain.Rates
	if sort.NeedsRates() || filter.NeedsRates() {
		var err error
		rates, err = e.rates.GetLatestRates(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get conversion rates: %w", err)
		}
	}

	q, err := Compile(page, filter, sort, caller, rates, e.clock.Now())
	if err != nil {
		return nil, err
	}

	var (
		total  uint64
		tokens []schema.Token
	)
	group := e.pool.NewGroupContext(ctx)
	group.SubmitErr(func() error {
		var err error
		total, err = e.store.CountTokens(ctx, q)
		return err
	})
	group.SubmitErr(func() error {
		var err error
		tokens, err = e.store.QueryTokens(ctx, q)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	items, err := e.hydrate(ctx, tokens)
	if err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Tokens listed",
		zap.String("sort", string(sort)),
		zap.Int("page", page.Page),
		zap.Int("count", len(items)),
		zap.Uint64("total", total))

	return &TokenPage{
		Items:   items,
		Total:   total,
		Page:    page.Page,
		PerPage: page.PerPage,
		HasMore: total > uint64(page.Offset()+len(items)), //nolint:gosec,G115
	}, nil
}

// hydrate attaches every edition of the page's tokens, fetched unfiltered in one query
func (e *engine) hydrate(ctx context.Context, tokens []schema.Token) ([]TokenWithEditions, error) {
	items := make([]TokenWithEditions, len(tokens))
	if len(tokens) == 0 {
		return items, nil
	}

	keys := make([]domain.TokenKey, len(tokens))
	for i, t := range tokens {
		keys[i] = domain.TokenKey{ContractAddress: t.ContractAddress, TokenID: t.TokenID}
	}

	editions, err := e.store.GetEditionsByTokenKeys(ctx, keys)
	if err != nil {
		return nil, err
	}

	for i, t := range tokens {
		items[i] = TokenWithEditions{Token: t, Editions: editions[keys[i]]}
	}
	return items, nil
}
