package dispatcher_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/dedup"
	"github.com/feral-file/ff-market-sync/internal/dispatcher"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/mocks"
)

const (
	testContract = "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB"
	testUser     = "0x000000000000000000000000000000000000dEaD"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testDispatcherMocks struct {
	ctrl       *gomock.Controller
	rebuilder  *mocks.MockRebuilder
	sales      *mocks.MockSaleService
	auctions   *mocks.MockAuctionService
	users      *mocks.MockUserService
	dispatcher dispatcher.Dispatcher
}

func setupTestDispatcher(t *testing.T, window time.Duration) *testDispatcherMocks {
	ctrl := gomock.NewController(t)

	tm := &testDispatcherMocks{
		ctrl:      ctrl,
		rebuilder: mocks.NewMockRebuilder(ctrl),
		sales:     mocks.NewMockSaleService(ctrl),
		auctions:  mocks.NewMockAuctionService(ctrl),
		users:     mocks.NewMockUserService(ctrl),
	}

	middleware := dedup.New(dedup.Config{
		Window:     window,
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
	}, adapter.NewClock(), adapter.NewJCS())

	tm.dispatcher = dispatcher.New(tm.rebuilder, tm.sales, tm.auctions, tm.users, middleware)
	return tm
}

func tokenKey(id string) domain.TokenKey {
	return domain.NewTokenKey(testContract, id)
}

func payload(t *testing.T, v any) json.RawMessage {
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func TestDispatch_UpdateToken(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("1")).Return(true, nil)

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateToken,
		Key:       "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:1",
	})
	assert.NoError(t, err)
}

func TestDispatch_UpdateToken_InvalidKey(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateToken,
		Key:       "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)
}

func TestDispatch_UnknownOperation(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: "rename_token",
		Key:       "x",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidNotification)
}

func TestDispatch_DeleteToken(t *testing.T) {
	tests := []struct {
		name string
		key  string
		ref  domain.EditionRef
	}{
		{
			name: "whole token",
			key:  testContract + ":1",
			ref:  domain.EditionRef{TokenKey: tokenKey("1")},
		},
		{
			name: "single edition",
			key:  testContract + ":1:4",
			ref:  domain.EditionRef{TokenKey: tokenKey("1"), EditionID: strPtr("4")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := setupTestDispatcher(t, time.Millisecond)
			defer tm.ctrl.Finish()

			tm.rebuilder.EXPECT().DeleteToken(gomock.Any(), tt.ref).Return(false, nil)

			err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
				Operation: domain.OperationDeleteToken,
				Key:       tt.key,
			})
			assert.NoError(t, err)
		})
	}
}

func TestDispatch_UpdateSale(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	tm.sales.EXPECT().GetSale(gomock.Any(), "sale-1").Return(&domain.Sale{
		ID:              "sale-1",
		ContractAddress: testContract,
		TokenID:         "7",
		EditionID:       "1",
	}, nil)
	tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("7")).Return(true, nil)

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateSale,
		Key:       "sale-1",
	})
	assert.NoError(t, err)
}

func TestDispatch_UpdateSale_NotFound(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	tm.sales.EXPECT().GetSale(gomock.Any(), "sale-1").Return(nil, domain.ErrNotFound)

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateSale,
		Key:       "sale-1",
	})
	assert.NoError(t, err)
}

func TestDispatch_UpdateAuction(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	tm.auctions.EXPECT().GetAuction(gomock.Any(), "auction-1").Return(&domain.Auction{
		ID:              "auction-1",
		ContractAddress: testContract,
		TokenID:         "9",
	}, nil)
	tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("9")).Return(true, nil)

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateAuction,
		Key:       "auction-1",
	})
	assert.NoError(t, err)
}

func TestDispatch_UpdateOffer(t *testing.T) {
	t.Run("token offer", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("3")).Return(true, nil)

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateOffer,
			Key:       "offer-1",
			Payload:   payload(t, domain.Offer{ID: "offer-1", ContractAddress: testContract, TokenID: strPtr("3")}),
		})
		assert.NoError(t, err)
	})

	t.Run("collection offer", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateOffer,
			Key:       "offer-2",
			Payload:   payload(t, domain.Offer{ID: "offer-2", ContractAddress: testContract, CollectionID: strPtr("col-1")}),
		})
		assert.NoError(t, err)
	})
}

func TestDispatch_UpdateAsset(t *testing.T) {
	t.Run("token media", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		tm.rebuilder.EXPECT().RefreshTokenMedia(gomock.Any(), tokenKey("5")).Return(true, nil)

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateAsset,
			Key:       "asset-1",
			Payload:   payload(t, domain.AssetChange{Entity: domain.AssetEntityToken, TokenKey: testContract + ":5"}),
		})
		assert.NoError(t, err)
	})

	t.Run("user avatar", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		user := &domain.User{Address: testUser, Username: "dead"}
		tm.users.EXPECT().GetUser(gomock.Any(), testUser).Return(user, nil)
		tm.rebuilder.EXPECT().RebuildUser(gomock.Any(), *user).Return(nil)

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateAsset,
			Key:       "asset-2",
			Payload:   payload(t, domain.AssetChange{Entity: domain.AssetEntityUserAvatar, OwnerAddress: "0x000000000000000000000000000000000000dead"}),
		})
		assert.NoError(t, err)
	})

	t.Run("user banner", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateAsset,
			Key:       "asset-3",
			Payload:   payload(t, domain.AssetChange{Entity: domain.AssetEntityUserBanner, OwnerAddress: testUser}),
		})
		assert.NoError(t, err)
	})

	t.Run("unknown entity", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateAsset,
			Key:       "asset-4",
			Payload:   payload(t, domain.AssetChange{Entity: "sticker"}),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidNotification)
	})
}

func TestDispatch_UpdateCollection(t *testing.T) {
	t.Run("upsert", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		tm.rebuilder.EXPECT().UpsertCollection(gomock.Any(), "col-1").Return(true, nil)

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateCollection,
			Key:       "col-1",
		})
		assert.NoError(t, err)
	})

	t.Run("deleted", func(t *testing.T) {
		tm := setupTestDispatcher(t, time.Millisecond)
		defer tm.ctrl.Finish()

		tm.rebuilder.EXPECT().DeleteCollection(gomock.Any(), "col-1").Return(true, nil)

		err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
			Operation: domain.OperationUpdateCollection,
			Key:       "col-1",
			Payload:   payload(t, domain.CollectionChange{Deleted: true}),
		})
		assert.NoError(t, err)
	})
}

func TestDispatch_UpdateUser(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	tm.rebuilder.EXPECT().
		RebuildUser(gomock.Any(), domain.User{Address: testUser, DisplayName: "Dead"}).
		Return(nil)

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateUser,
		Key:       testUser,
		Payload:   payload(t, map[string]any{"display_name": "Dead"}),
	})
	assert.NoError(t, err)
}

func TestDispatch_BurstCollapsesToOneRebuild(t *testing.T) {
	tm := setupTestDispatcher(t, 200*time.Millisecond)
	defer tm.ctrl.Finish()

	tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("1")).Return(true, nil).Times(1)

	notification := domain.Notification{
		Operation: domain.OperationUpdateToken,
		Key:       testContract + ":1",
	}

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = tm.dispatcher.Dispatch(context.Background(), notification)
		}()
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestDispatch_RetriesTransientContention(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	gomock.InOrder(
		tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("1")).Return(false, domain.ErrVersionMismatch),
		tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("1")).Return(true, nil),
	)

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateToken,
		Key:       testContract + ":1",
	})
	assert.NoError(t, err)
}

func TestDispatch_ReturnsUpstreamFailure(t *testing.T) {
	tm := setupTestDispatcher(t, time.Millisecond)
	defer tm.ctrl.Finish()

	upstreamErr := errors.New("token service: 502")
	tm.rebuilder.EXPECT().RebuildToken(gomock.Any(), tokenKey("1")).Return(false, upstreamErr).Times(1)

	err := tm.dispatcher.Dispatch(context.Background(), domain.Notification{
		Operation: domain.OperationUpdateToken,
		Key:       testContract + ":1",
	})
	assert.ErrorIs(t, err, upstreamErr)
}

func strPtr(s string) *string {
	return &s
}
