package rebuild

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/store"
)

// RebuildToken recomputes the full token aggregate and replaces its edition set
func (r *rebuilder) RebuildToken(ctx context.Context, key domain.TokenKey) (bool, error) {
	// 1. Current version, the compare-and-swap baseline
	current, err := r.store.GetToken(ctx, key)
	if err != nil {
		return false, err
	}
	var initialVersion int64
	if current != nil {
		initialVersion = current.Version
	}

	// 2. Canonical token, the only required fetch
	token, err := r.services.Tokens.GetToken(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.InfoCtx(ctx, "Token not found upstream, skipping rebuild", zap.String("token_key", key.String()))
			return false, nil
		}
		return false, err
	}

	// 3. Everything else, concurrently
	snapshot, err := r.fetchSnapshot(ctx, key)
	if err != nil {
		return false, err
	}
	snapshot.token = *token

	// 4-7. Derive
	editions := deriveEditions(key, snapshot)
	row, err := deriveToken(key, snapshot, editions, r.config.GraveyardAddress)
	if err != nil {
		return false, fmt.Errorf("failed to derive token aggregate: %w", err)
	}

	// 8. Write under optimistic concurrency
	if err := r.store.SaveTokenAggregate(ctx, store.SaveTokenAggregateInput{
		Token:           row,
		Editions:        editions,
		ExpectedVersion: initialVersion,
	}); err != nil {
		return false, err
	}

	logger.InfoCtx(ctx, "Token rebuilt",
		zap.String("token_key", key.String()),
		zap.Int64("version", initialVersion+1),
		zap.Int("editions", len(editions)),
	)

	// 9. Ensure the collection row exists
	if row.CollectionID != nil && *row.CollectionID != "" {
		if _, err := r.RebuildCollection(ctx, *row.CollectionID); err != nil {
			return true, fmt.Errorf("failed to ensure collection %s: %w", *row.CollectionID, err)
		}
	}

	return true, nil
}

// fetchSnapshot fetches the secondary inputs of a token rebuild concurrently.
// Editions and rates are required: without rates the min/max listing columns cannot be derived.
// A failure of any other fetch degrades to an empty value.
func (r *rebuilder) fetchSnapshot(ctx context.Context, key domain.TokenKey) (upstreamSnapshot, error) {
	var snapshot upstreamSnapshot

	degrade := func(source string, err error) {
		logger.WarnCtx(ctx, "Secondary fetch failed, continuing without it",
			zap.Error(err),
			zap.String("source", source),
			zap.String("token_key", key.String()),
		)
	}

	group := r.pool.NewGroupContext(ctx)
	group.SubmitErr(func() error {
		editions, err := r.services.Tokens.ListEditions(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to fetch editions: %w", err)
		}
		sortEditions(editions)
		snapshot.editions = editions
		return nil
	})
	group.Submit(func() {
		sales, err := r.services.Sales.ListActiveSales(ctx, key)
		if err != nil {
			degrade("sales", err)
			return
		}
		snapshot.sales = sales
	})
	group.Submit(func() {
		auctions, err := r.services.Auctions.ListActiveAuctions(ctx, key)
		if err != nil {
			degrade("auctions", err)
			return
		}
		snapshot.auctions = auctions
	})
	group.Submit(func() {
		assets, err := r.services.Assets.GetTokenAssets(ctx, key)
		if err != nil {
			degrade("assets", err)
			return
		}
		snapshot.assets = assets
	})
	group.Submit(func() {
		offer, err := r.services.Offers.GetHighestOffer(ctx, domain.OfferTarget{Token: &key})
		if err != nil {
			degrade("offer", err)
			return
		}
		snapshot.offer = offer
	})
	group.SubmitErr(func() error {
		rates, err := r.services.Rates.GetLatestRates(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrUpstreamUnavailable) {
				return fmt.Errorf("failed to fetch conversion rates: %w", err)
			}
			return fmt.Errorf("%w: failed to fetch conversion rates: %v", domain.ErrUpstreamUnavailable, err)
		}
		snapshot.rates = rates
		return nil
	})

	if err := group.Wait(); err != nil {
		return upstreamSnapshot{}, err
	}
	return snapshot, nil
}

// RefreshTokenMedia replaces the media of a stored token in place
func (r *rebuilder) RefreshTokenMedia(ctx context.Context, key domain.TokenKey) (bool, error) {
	current, err := r.store.GetToken(ctx, key)
	if err != nil {
		return false, err
	}
	if current == nil {
		return r.RebuildToken(ctx, key)
	}

	assets, err := r.services.Assets.GetTokenAssets(ctx, key)
	if err != nil {
		return false, err
	}
	media, err := jsonArray(sortedAssets(assets))
	if err != nil {
		return false, fmt.Errorf("failed to encode media: %w", err)
	}

	patched, err := r.store.PatchTokenMedia(ctx, key, media)
	if err != nil {
		return false, err
	}
	if !patched {
		// deleted since the read above
		return r.RebuildToken(ctx, key)
	}

	logger.InfoCtx(ctx, "Token media refreshed", zap.String("token_key", key.String()), zap.Int("assets", len(assets)))
	return true, nil
}

// DeleteToken removes a token with all its editions, or one edition
func (r *rebuilder) DeleteToken(ctx context.Context, ref domain.EditionRef) (bool, error) {
	if ref.EditionID == nil {
		deleted, err := r.store.DeleteToken(ctx, ref.TokenKey)
		if err != nil {
			return false, err
		}
		if !deleted {
			logger.InfoCtx(ctx, "Token already absent", zap.String("token_key", ref.TokenKey.String()))
		}
		return deleted, nil
	}

	result, err := r.store.DeleteEdition(ctx, ref.TokenKey, *ref.EditionID)
	if err != nil {
		return false, err
	}

	switch result {
	case store.EditionAbsent:
		logger.InfoCtx(ctx, "Edition already absent",
			zap.String("token_key", ref.TokenKey.String()),
			zap.String("edition_id", *ref.EditionID))
		return false, nil
	case store.TokenRemoved:
		logger.InfoCtx(ctx, "Last edition removed together with its token",
			zap.String("token_key", ref.TokenKey.String()),
			zap.String("edition_id", *ref.EditionID))
	}
	return true, nil
}
