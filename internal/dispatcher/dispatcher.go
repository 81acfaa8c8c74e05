// Package dispatcher routes change notifications to the aggregate rebuild paths.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/dedup"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/providers/marketplace"
	"github.com/feral-file/ff-market-sync/internal/rebuild"
)

// Rebuild operations, used as the dedup operation name
const (
	opRebuildToken      = "rebuild_token"
	opRefreshTokenMedia = "refresh_token_media"
	opDeleteToken       = "delete_token"
	opUpsertCollection  = "upsert_collection"
	opDeleteCollection  = "delete_collection"
	opRebuildUser       = "rebuild_user"

	scope = "dispatcher"
)

// Dispatcher defines the interface for handling change notifications
//
//go:generate mockgen -source=dispatcher.go -destination=../mocks/dispatcher.go -package=mocks -mock_names=Dispatcher=MockDispatcher
type Dispatcher interface {
	// Dispatch handles one notification. Superseded and vanished entities are not errors.
	// Malformed notifications return an error wrapping domain.ErrInvalidNotification.
	Dispatch(ctx context.Context, notification domain.Notification) error
}

type dispatcher struct {
	rebuilder rebuild.Rebuilder
	sales     marketplace.SaleService
	auctions  marketplace.AuctionService
	users     marketplace.UserService
	dedup     *dedup.Middleware
}

// New creates a new dispatcher
func New(
	rebuilder rebuild.Rebuilder,
	sales marketplace.SaleService,
	auctions marketplace.AuctionService,
	users marketplace.UserService,
	middleware *dedup.Middleware,
) Dispatcher {
	return &dispatcher{
		rebuilder: rebuilder,
		sales:     sales,
		auctions:  auctions,
		users:     users,
		dedup:     middleware,
	}
}

func invalid(n domain.Notification, err error) error {
	if errors.Is(err, domain.ErrInvalidNotification) {
		return err
	}
	return fmt.Errorf("%w: %s %q: %v", domain.ErrInvalidNotification, n.Operation, n.Key, err)
}

// Dispatch routes a notification to its rebuild path
func (d *dispatcher) Dispatch(ctx context.Context, n domain.Notification) error {
	if err := n.Validate(); err != nil {
		return err
	}

	err := d.route(ctx, n)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrSuperseded):
		logger.DebugCtx(ctx, "Notification superseded", zap.String("operation", string(n.Operation)), zap.String("key", n.Key))
		return nil
	case errors.Is(err, domain.ErrNotFound):
		logger.InfoCtx(ctx, "Notification target not found upstream", zap.String("operation", string(n.Operation)), zap.String("key", n.Key))
		return nil
	default:
		return err
	}
}

func (d *dispatcher) route(ctx context.Context, n domain.Notification) error {
	switch n.Operation {
	case domain.OperationUpdateToken:
		key, err := domain.ParseTokenKey(n.Key)
		if err != nil {
			return invalid(n, err)
		}
		return d.rebuildToken(ctx, key)

	case domain.OperationDeleteToken:
		ref, err := domain.ParseEditionRef(n.Key)
		if err != nil {
			return invalid(n, err)
		}
		_, err = dedup.Do(ctx, d.dedup, dedup.Request{Operation: opDeleteToken, Arguments: ref, Scope: scope},
			func(ctx context.Context) (bool, error) {
				return d.rebuilder.DeleteToken(ctx, ref)
			})
		return err

	case domain.OperationUpdateSale:
		sale, err := d.sales.GetSale(ctx, n.Key)
		if err != nil {
			return err
		}
		return d.rebuildToken(ctx, sale.TokenKey())

	case domain.OperationUpdateAuction:
		auction, err := d.auctions.GetAuction(ctx, n.Key)
		if err != nil {
			return err
		}
		return d.rebuildToken(ctx, auction.TokenKey())

	case domain.OperationUpdateOffer:
		var offer domain.Offer
		if err := n.DecodePayload(&offer); err != nil {
			return err
		}
		target := offer.TargetToken()
		if target == nil {
			// collection offers are not denormalized
			return nil
		}
		if !target.Valid() {
			return invalid(n, domain.ErrInvalidTokenKey)
		}
		return d.rebuildToken(ctx, *target)

	case domain.OperationUpdateAsset:
		return d.routeAsset(ctx, n)

	case domain.OperationUpdateCollection:
		var change domain.CollectionChange
		if len(n.Payload) > 0 {
			if err := n.DecodePayload(&change); err != nil {
				return err
			}
		}
		id := n.Key
		if change.Deleted {
			_, err := dedup.Do(ctx, d.dedup, dedup.Request{Operation: opDeleteCollection, Arguments: id, Scope: scope},
				func(ctx context.Context) (bool, error) {
					return d.rebuilder.DeleteCollection(ctx, id)
				})
			return err
		}
		_, err := dedup.Do(ctx, d.dedup, dedup.Request{Operation: opUpsertCollection, Arguments: id, Scope: scope},
			func(ctx context.Context) (bool, error) {
				return d.rebuilder.UpsertCollection(ctx, id)
			})
		return err

	case domain.OperationUpdateUser:
		var user domain.User
		if err := n.DecodePayload(&user); err != nil {
			return err
		}
		if user.Address == "" {
			user.Address = n.Key
		}
		return d.rebuildUser(ctx, user)
	}

	return invalid(n, errors.New("unroutable operation"))
}

func (d *dispatcher) routeAsset(ctx context.Context, n domain.Notification) error {
	var change domain.AssetChange
	if err := n.DecodePayload(&change); err != nil {
		return err
	}

	switch change.Entity {
	case domain.AssetEntityToken:
		key, err := domain.ParseTokenKey(change.TokenKey)
		if err != nil {
			return invalid(n, err)
		}
		_, err = dedup.Do(ctx, d.dedup, dedup.Request{Operation: opRefreshTokenMedia, Arguments: key, Scope: scope},
			func(ctx context.Context) (bool, error) {
				return d.rebuilder.RefreshTokenMedia(ctx, key)
			})
		return err

	case domain.AssetEntityUserAvatar:
		if change.OwnerAddress == "" {
			return invalid(n, errors.New("avatar asset without owner"))
		}
		user, err := d.users.GetUser(ctx, domain.NormalizeAddress(change.OwnerAddress))
		if err != nil {
			return err
		}
		return d.rebuildUser(ctx, *user)

	case domain.AssetEntityUserBanner:
		// banners are not denormalized
		return nil

	default:
		return invalid(n, fmt.Errorf("unknown asset entity %q", change.Entity))
	}
}

func (d *dispatcher) rebuildToken(ctx context.Context, key domain.TokenKey) error {
	_, err := dedup.Do(ctx, d.dedup, dedup.Request{Operation: opRebuildToken, Arguments: key, Scope: scope},
		func(ctx context.Context) (bool, error) {
			return d.rebuilder.RebuildToken(ctx, key)
		})
	return err
}

func (d *dispatcher) rebuildUser(ctx context.Context, user domain.User) error {
	_, err := dedup.Do(ctx, d.dedup, dedup.Request{Operation: opRebuildUser, Arguments: user, Scope: scope},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, d.rebuilder.RebuildUser(ctx, user)
		})
	return err
}
