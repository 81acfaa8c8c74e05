package sweeper_test

import (
	"context"
	"errors"
	"os"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/mocks"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
	"github.com/feral-file/ff-market-sync/internal/sweeper"
)

const testContract = "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB"

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

type testSweeperMocks struct {
	ctrl      *gomock.Controller
	store     *mocks.MockStore
	cursors   *mocks.MockCursorStore
	offers    *mocks.MockOfferService
	publisher *mocks.MockPublisher
	clock     *mocks.MockClock
}

func setupTestSweeper(t *testing.T) *testSweeperMocks {
	ctrl := gomock.NewController(t)
	tm := &testSweeperMocks{
		ctrl:      ctrl,
		store:     mocks.NewMockStore(ctrl),
		cursors:   mocks.NewMockCursorStore(ctrl),
		offers:    mocks.NewMockOfferService(ctrl),
		publisher: mocks.NewMockPublisher(ctrl),
		clock:     mocks.NewMockClock(ctrl),
	}
	tm.clock.EXPECT().Now().Return(time.Now()).AnyTimes()
	tm.clock.EXPECT().Since(gomock.Any()).Return(time.Millisecond).AnyTimes()
	return tm
}

func newTestSweeper(tm *testSweeperMocks, batchSize int) sweeper.Sweeper {
	return sweeper.NewOfferDriftSweeper(
		sweeper.OfferDriftSweeperConfig{
			Interval:       time.Minute,
			BatchSize:      batchSize,
			WorkerPoolSize: 2,
		},
		tm.store,
		tm.cursors,
		tm.offers,
		tm.publisher,
		tm.clock,
	)
}

// stopAfterFirstCycle cancels the run as soon as the sweeper goes to sleep
func stopAfterFirstCycle(tm *testSweeperMocks, cancel context.CancelFunc) {
	tm.clock.EXPECT().After(time.Minute).DoAndReturn(func(time.Duration) <-chan time.Time {
		cancel()
		return make(chan time.Time)
	})
}

// recordPublished captures the keys of published notifications
func recordPublished(tm *testSweeperMocks) func() []string {
	var mu sync.Mutex
	var keys []string
	tm.publisher.EXPECT().PublishNotification(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, n domain.Notification) error {
			mu.Lock()
			defer mu.Unlock()
			if n.Operation == domain.OperationUpdateToken {
				keys = append(keys, n.Key)
			}
			return nil
		}).AnyTimes()

	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		out := append([]string(nil), keys...)
		sort.Strings(out)
		return out
	}
}

func storedToken(tokenID string, offerID string, price int64, currency string) schema.Token {
	t := schema.Token{ContractAddress: domain.NormalizeAddress(testContract), TokenID: tokenID}
	if offerID != "" {
		t.HighestOfferID = &offerID
		t.HighestOfferPrice = decimal.NewNullDecimal(decimal.NewFromInt(price))
		t.HighestOfferCurrency = &currency
	}
	return t
}

func keyOf(tokenID string) domain.TokenKey {
	return domain.NewTokenKey(testContract, tokenID)
}

func upstreamOffer(id string, price int64, currency string) domain.Offer {
	return domain.Offer{ID: id, Price: decimal.NewFromInt(price), Currency: domain.Currency(currency)}
}

func TestOfferDriftSweeper_Name(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	assert.Equal(t, sweeper.OFFER_DRIFT_SWEEPER_NAME, newTestSweeper(tm, 10).Name())
}

func TestOfferDriftSweeper_PublishesOnlyDriftedTokens(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	s := newTestSweeper(tm, 10)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tokens := []schema.Token{
		storedToken("1", "o-1", 10, "ETH"),  // in sync
		storedToken("2", "o-2", 10, "ETH"),  // replaced by another offer
		storedToken("3", "o-3", 10, "ETH"),  // price changed
		storedToken("4", "o-4", 10, "ETH"),  // currency changed
		storedToken("5", "", 0, ""),         // new offer
		storedToken("6", "o-6", 10, "USDC"), // expired
		storedToken("7", "", 0, ""),         // still none
	}

	tm.cursors.EXPECT().GetSweepCursor(gomock.Any(), sweeper.OFFER_DRIFT_SWEEPER_NAME).Return(nil, nil)
	tm.store.EXPECT().ListTokenOfferStates(gomock.Any(), gomock.Nil(), 10).Return(tokens, nil)
	tm.offers.EXPECT().GetHighestOffersBatch(gomock.Any(), gomock.Len(7)).Return(map[domain.TokenKey]domain.Offer{
		keyOf("1"): upstreamOffer("o-1", 10, "ETH"),
		keyOf("2"): upstreamOffer("o-9", 12, "ETH"),
		keyOf("3"): upstreamOffer("o-3", 11, "ETH"),
		keyOf("4"): upstreamOffer("o-4", 10, "USDC"),
		keyOf("5"): upstreamOffer("o-5", 1, "ETH"),
	}, nil)
	tm.cursors.EXPECT().SetSweepCursor(gomock.Any(), sweeper.OFFER_DRIFT_SWEEPER_NAME, gomock.Nil()).Return(nil)
	published := recordPublished(tm)
	stopAfterFirstCycle(tm, cancel)

	require.NoError(t, s.Start(ctx))

	assert.Equal(t, []string{
		keyOf("2").String(),
		keyOf("3").String(),
		keyOf("4").String(),
		keyOf("5").String(),
		keyOf("6").String(),
	}, published())
}

func TestOfferDriftSweeper_AdvancesCursorBetweenBatches(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	s := newTestSweeper(tm, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resumeFrom := keyOf("1")
	second := keyOf("3")

	gomock.InOrder(
		tm.cursors.EXPECT().GetSweepCursor(gomock.Any(), sweeper.OFFER_DRIFT_SWEEPER_NAME).Return(&resumeFrom, nil),
		tm.store.EXPECT().ListTokenOfferStates(gomock.Any(), &resumeFrom, 2).
			Return([]schema.Token{storedToken("2", "", 0, ""), storedToken("3", "", 0, "")}, nil),
		tm.offers.EXPECT().GetHighestOffersBatch(gomock.Any(), []domain.TokenKey{keyOf("2"), keyOf("3")}).
			Return(map[domain.TokenKey]domain.Offer{}, nil),
		tm.cursors.EXPECT().SetSweepCursor(gomock.Any(), sweeper.OFFER_DRIFT_SWEEPER_NAME, &second).Return(nil),
		tm.store.EXPECT().ListTokenOfferStates(gomock.Any(), &second, 2).
			Return([]schema.Token{storedToken("4", "o-4", 5, "ETH")}, nil),
		tm.offers.EXPECT().GetHighestOffersBatch(gomock.Any(), []domain.TokenKey{keyOf("4")}).
			Return(map[domain.TokenKey]domain.Offer{}, nil),
		tm.cursors.EXPECT().SetSweepCursor(gomock.Any(), sweeper.OFFER_DRIFT_SWEEPER_NAME, gomock.Nil()).Return(nil),
	)
	published := recordPublished(tm)
	stopAfterFirstCycle(tm, cancel)

	require.NoError(t, s.Start(ctx))
	assert.Equal(t, []string{keyOf("4").String()}, published())
}

func TestOfferDriftSweeper_PermanentFetchErrorKeepsCursor(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	s := newTestSweeper(tm, 2)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tm.cursors.EXPECT().GetSweepCursor(gomock.Any(), sweeper.OFFER_DRIFT_SWEEPER_NAME).Return(nil, nil)
	tm.store.EXPECT().ListTokenOfferStates(gomock.Any(), gomock.Nil(), 2).
		Return([]schema.Token{storedToken("1", "o-1", 1, "ETH")}, nil)
	tm.offers.EXPECT().GetHighestOffersBatch(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("unexpected status 400")).Times(1)
	stopAfterFirstCycle(tm, cancel)

	// no cursor write and no publish
	require.NoError(t, s.Start(ctx))
}

func TestOfferDriftSweeper_Stop(t *testing.T) {
	tm := setupTestSweeper(t)
	defer tm.ctrl.Finish()

	s := newTestSweeper(tm, 2)

	// stopping an idle sweeper is a no-op
	require.NoError(t, s.Stop(context.Background()))

	tm.cursors.EXPECT().GetSweepCursor(gomock.Any(), gomock.Any()).Return(nil, nil)
	tm.store.EXPECT().ListTokenOfferStates(gomock.Any(), gomock.Nil(), 2).Return(nil, nil)
	tm.cursors.EXPECT().SetSweepCursor(gomock.Any(), gomock.Any(), gomock.Nil()).Return(nil)

	sleeping := make(chan struct{})
	tm.clock.EXPECT().After(time.Minute).DoAndReturn(func(time.Duration) <-chan time.Time {
		close(sleeping)
		return make(chan time.Time)
	})

	done := make(chan error, 1)
	go func() {
		done <- s.Start(context.Background())
	}()

	select {
	case <-sleeping:
	case <-time.After(5 * time.Second):
		t.Fatal("sweeper never finished its first cycle")
	}

	assert.Error(t, s.Start(context.Background()), "second start must be rejected")

	stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(stopCtx))
	require.NoError(t, <-done)
}
