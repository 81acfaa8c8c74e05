// Package rebuild recomputes the denormalized token, collection and user aggregates
// from the current state of the domain services.
package rebuild

import (
	"context"

	"github.com/alitto/pond/v2"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/providers/marketplace"
	"github.com/feral-file/ff-market-sync/internal/store"
)

const defaultFetchConcurrency = 64

// Config holds the rebuilder configuration
type Config struct {
	// GraveyardAddress is the account whose editions count as burned
	GraveyardAddress string
	// FetchConcurrency bounds the upstream fetches running at once across all rebuilds
	FetchConcurrency int
}

// Services groups the domain service clients a rebuild reads from
type Services struct {
	Tokens   marketplace.TokenService
	Sales    marketplace.SaleService
	Auctions marketplace.AuctionService
	Offers   marketplace.OfferService
	Users    marketplace.UserService
	Assets   marketplace.AssetService
	Rates    marketplace.RateSource
}

// Rebuilder defines the aggregate rebuild operations
//
//go:generate mockgen -source=rebuild.go -destination=../mocks/rebuilder.go -package=mocks -mock_names=Rebuilder=MockRebuilder
type Rebuilder interface {
	// RebuildToken recomputes a token and its editions. It returns false when the token does not exist upstream.
	RebuildToken(ctx context.Context, key domain.TokenKey) (bool, error)
	// RefreshTokenMedia patches the media of a stored token, or rebuilds it when it is not stored yet
	RefreshTokenMedia(ctx context.Context, key domain.TokenKey) (bool, error)
	// DeleteToken removes a token, or a single edition when the reference names one.
	// It returns false when nothing was stored at the reference.
	DeleteToken(ctx context.Context, ref domain.EditionRef) (bool, error)

	// RebuildCollection ensures a collection row exists. It returns false when the collection does not exist upstream.
	RebuildCollection(ctx context.Context, id string) (bool, error)
	// UpsertCollection overwrites a collection with its upstream state
	UpsertCollection(ctx context.Context, id string) (bool, error)
	// DeleteCollection removes a collection. It returns false when it was already absent.
	DeleteCollection(ctx context.Context, id string) (bool, error)

	// RebuildUser overwrites a user, resolving its avatar asset
	RebuildUser(ctx context.Context, user domain.User) error
}

type rebuilder struct {
	config   Config
	store    store.Store
	services Services
	pool     pond.Pool
	clock    adapter.Clock
}

// New creates a new rebuilder
func New(cfg Config, st store.Store, services Services, clock adapter.Clock) Rebuilder {
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}
	return &rebuilder{
		config:   cfg,
		store:    st,
		services: services,
		pool:     pond.NewPool(cfg.FetchConcurrency),
		clock:    clock,
	}
}
