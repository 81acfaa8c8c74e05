package rebuild

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

func (r *rebuilder) collectionRow(c domain.Collection) *schema.Collection {
	now := r.clock.Now()
	createdAt := c.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	return &schema.Collection{
		ID:             c.ID,
		Name:           c.Name,
		Slug:           c.Slug,
		CreatorAddress: domain.NormalizeAddress(c.CreatorAddress),
		VerifiedLevel:  c.VerifiedLevel,
		Visible:        c.Visible,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
}

// fetchCollection returns nil when the collection does not exist upstream
func (r *rebuilder) fetchCollection(ctx context.Context, id string) (*domain.Collection, error) {
	collection, err := r.services.Tokens.GetCollection(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			logger.InfoCtx(ctx, "Collection not found upstream", zap.String("collection_id", id))
			return nil, nil
		}
		return nil, err
	}
	return collection, nil
}

// RebuildCollection creates the collection row unless one exists already
func (r *rebuilder) RebuildCollection(ctx context.Context, id string) (bool, error) {
	existing, err := r.store.GetCollection(ctx, id)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return true, nil
	}

	collection, err := r.fetchCollection(ctx, id)
	if err != nil || collection == nil {
		return false, err
	}

	created, err := r.store.CreateCollectionIfAbsent(ctx, r.collectionRow(*collection))
	if err != nil {
		return false, err
	}
	if created {
		logger.InfoCtx(ctx, "Collection created", zap.String("collection_id", id))
	}
	return true, nil
}

// UpsertCollection overwrites the collection row with its upstream state.
// A collection gone upstream is removed.
func (r *rebuilder) UpsertCollection(ctx context.Context, id string) (bool, error) {
	collection, err := r.fetchCollection(ctx, id)
	if err != nil {
		return false, err
	}
	if collection == nil {
		if _, err := r.DeleteCollection(ctx, id); err != nil {
			return false, err
		}
		return false, nil
	}

	if err := r.store.UpsertCollection(ctx, r.collectionRow(*collection)); err != nil {
		return false, fmt.Errorf("failed to upsert collection %s: %w", id, err)
	}
	logger.InfoCtx(ctx, "Collection upserted", zap.String("collection_id", id))
	return true, nil
}

// DeleteCollection removes the collection row
func (r *rebuilder) DeleteCollection(ctx context.Context, id string) (bool, error) {
	deleted, err := r.store.DeleteCollection(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		logger.InfoCtx(ctx, "Collection already absent", zap.String("collection_id", id))
	}
	return deleted, nil
}
