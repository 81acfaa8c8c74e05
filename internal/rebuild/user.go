package rebuild

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

// latestAsset returns the most recently created asset, nil when there is none
func latestAsset(assets []domain.Asset) *domain.Asset {
	var latest *domain.Asset
	for i := range assets {
		if latest == nil || assets[i].CreatedAt.After(latest.CreatedAt) {
			latest = &assets[i]
		}
	}
	return latest
}

// RebuildUser fully upserts a user. The avatar is the latest generated avatar asset,
// falling back to the legacy avatar url while none has been generated.
func (r *rebuilder) RebuildUser(ctx context.Context, user domain.User) error {
	address := domain.NormalizeAddress(user.Address)
	if address == "" {
		return fmt.Errorf("%w: user without address", domain.ErrInvalidNotification)
	}

	avatarURL := user.AvatarURL
	assets, err := r.services.Assets.GetUserAssets(ctx, address, domain.AssetKindAvatar)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to fetch avatar assets, using legacy avatar url",
			zap.Error(err),
			zap.String("address", address))
	} else if avatar := latestAsset(assets); avatar != nil {
		avatarURL = &avatar.URL
	}

	now := r.clock.Now()
	row := &schema.User{
		Address:       address,
		Username:      user.Username,
		DisplayName:   user.DisplayName,
		Bio:           user.Bio,
		VerifiedLevel: user.VerifiedLevel,
		AvatarURL:     avatarURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := r.store.UpsertUser(ctx, row); err != nil {
		return fmt.Errorf("failed to upsert user %s: %w", address, err)
	}

	logger.InfoCtx(ctx, "User upserted", zap.String("address", address))
	return nil
}
