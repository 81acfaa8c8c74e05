package sweeper

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/messaging"
	"github.com/feral-file/ff-market-sync/internal/providers/marketplace"
	"github.com/feral-file/ff-market-sync/internal/store"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

const (
	OFFER_DRIFT_SWEEPER_NAME = "offer-drift-sweeper"

	DEFAULT_SWEEP_INTERVAL   = 10 * time.Minute
	DEFAULT_SWEEP_BATCH_SIZE = 100
	OFFER_FETCH_MAX_RETRIES  = 3
)

// OfferDriftSweeperConfig holds configuration for the offer drift sweeper
type OfferDriftSweeperConfig struct {
	Interval       time.Duration // Time to sleep between sweep cycles
	BatchSize      int           // Tokens compared per offer service call
	WorkerPoolSize int           // Concurrent notification publishers
}

// offerDriftSweeper walks every token in key order and requests a rebuild for the tokens
// whose stored highest offer no longer matches the offer service. Offers can expire
// without any notification, so the read model would keep them otherwise.
type offerDriftSweeper struct {
	config    OfferDriftSweeperConfig
	store     store.Store
	cursors   store.CursorStore
	offers    marketplace.OfferService
	publisher messaging.Publisher
	clock     adapter.Clock
	pool      pond.Pool
	running   atomic.Bool
	stopChan  chan struct{}
	stoppedCh chan struct{}
}

// NewOfferDriftSweeper creates a new offer drift sweeper
func NewOfferDriftSweeper(
	config OfferDriftSweeperConfig,
	st store.Store,
	cursors store.CursorStore,
	offers marketplace.OfferService,
	publisher messaging.Publisher,
	clock adapter.Clock,
) Sweeper {
	if config.Interval <= 0 {
		config.Interval = DEFAULT_SWEEP_INTERVAL
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DEFAULT_SWEEP_BATCH_SIZE
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 1
	}
	return &offerDriftSweeper{
		config:    config,
		store:     st,
		cursors:   cursors,
		offers:    offers,
		publisher: publisher,
		clock:     clock,
		stopChan:  make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

func (s *offerDriftSweeper) Name() string {
	return OFFER_DRIFT_SWEEPER_NAME
}

// Start runs sweep cycles separated by the configured interval until stopped
func (s *offerDriftSweeper) Start(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("sweeper already running")
	}
	defer func() {
		s.running.Store(false)
		close(s.stoppedCh)
	}()

	logger.InfoCtx(ctx, "Starting offer drift sweeper",
		zap.Duration("interval", s.config.Interval),
		zap.Int("batch_size", s.config.BatchSize),
		zap.Int("worker_pool_size", s.config.WorkerPoolSize),
	)

	s.pool = pond.NewPool(
		s.config.WorkerPoolSize,
		pond.WithQueueSize(s.config.BatchSize),
		pond.WithContext(ctx),
	)
	defer s.pool.StopAndWait()

	for {
		if err := s.runSweepCycle(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.ErrorCtx(ctx, err)
		}

		if !s.sleep(ctx, s.config.Interval) {
			logger.InfoCtx(ctx, "Offer drift sweeper stopping")
			return nil
		}
	}
}

// Stop gracefully stops the sweeper with timeout support
func (s *offerDriftSweeper) Stop(ctx context.Context) error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}

	logger.InfoCtx(ctx, "Stopping offer drift sweeper")
	close(s.stopChan)

	select {
	case <-s.stoppedCh:
		logger.InfoCtx(ctx, "Offer drift sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Offer drift sweeper stop interrupted by context timeout")
		return ctx.Err()
	}
}

// runSweepCycle resumes from the stored cursor and walks the tokens to the end.
// The cursor is saved after every batch so that a restart continues where it stopped.
func (s *offerDriftSweeper) runSweepCycle(ctx context.Context) error {
	startTime := s.clock.Now()
	runID := zap.String("run_id", ulid.Make().String())

	cursor, err := s.cursors.GetSweepCursor(ctx, s.Name())
	if err != nil {
		return fmt.Errorf("failed to get sweep cursor: %w", err)
	}

	logger.InfoCtx(ctx, "Starting sweep cycle", runID, zap.Stringer("cursor", cursorField{key: cursor}))

	var scanned, drifted int
	for {
		if s.stopped() {
			return nil
		}

		tokens, err := s.store.ListTokenOfferStates(ctx, cursor, s.config.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to list token offer states: %w", err)
		}

		n, err := s.sweepBatch(ctx, tokens)
		if err != nil {
			return err
		}
		scanned += len(tokens)
		drifted += n

		if len(tokens) < s.config.BatchSize {
			// End of the keyspace, the next cycle starts over
			if err := s.cursors.SetSweepCursor(ctx, s.Name(), nil); err != nil {
				return fmt.Errorf("failed to reset sweep cursor: %w", err)
			}
			break
		}

		last := tokens[len(tokens)-1]
		key := domain.TokenKey{ContractAddress: last.ContractAddress, TokenID: last.TokenID}
		if err := s.cursors.SetSweepCursor(ctx, s.Name(), &key); err != nil {
			return fmt.Errorf("failed to set sweep cursor: %w", err)
		}
		cursor = &key
	}

	logger.InfoCtx(ctx, "Sweep cycle completed",
		runID,
		zap.Duration("duration", s.clock.Since(startTime)),
		zap.Int("scanned", scanned),
		zap.Int("drifted", drifted),
	)

	return nil
}

// sweepBatch compares one batch against the offer service and publishes a token update per drifted token
func (s *offerDriftSweeper) sweepBatch(ctx context.Context, tokens []schema.Token) (int, error) {
	if len(tokens) == 0 {
		return 0, nil
	}

	keys := make([]domain.TokenKey, len(tokens))
	for i, t := range tokens {
		keys[i] = domain.TokenKey{ContractAddress: t.ContractAddress, TokenID: t.TokenID}
	}

	offers, err := s.fetchOffersWithRetry(ctx, keys)
	if err != nil {
		return 0, err
	}

	var drifted []domain.TokenKey
	for i, t := range tokens {
		var offer *domain.Offer
		if o, ok := offers[keys[i]]; ok {
			offer = &o
		}
		if offerDrifted(t, offer) {
			drifted = append(drifted, keys[i])
		}
	}

	group := s.pool.NewGroupContext(ctx)
	for _, key := range drifted {
		group.SubmitErr(func() error {
			logger.DebugCtx(ctx, "Highest offer drifted", zap.String("token_key", key.String()))
			return s.publisher.PublishNotification(ctx, domain.Notification{
				Operation: domain.OperationUpdateToken,
				Key:       key.String(),
			})
		})
	}
	if err := group.Wait(); err != nil {
		return 0, fmt.Errorf("failed to publish token updates: %w", err)
	}

	return len(drifted), nil
}

func (s *offerDriftSweeper) fetchOffersWithRetry(ctx context.Context, keys []domain.TokenKey) (map[domain.TokenKey]domain.Offer, error) {
	var offers map[domain.TokenKey]domain.Offer
	operation := func() error {
		var err error
		offers, err = s.offers.GetHighestOffersBatch(ctx, keys)
		if err != nil && !errors.Is(err, domain.ErrUpstreamUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(b, OFFER_FETCH_MAX_RETRIES), ctx)

	notify := func(err error, next time.Duration) {
		logger.WarnCtx(ctx, "Highest offers fetch failed, retrying",
			zap.Error(err),
			zap.Int("batch_size", len(keys)),
			zap.Duration("next_retry_in", next),
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("failed to get highest offers: %w", err)
	}
	return offers, nil
}

// offerDrifted reports whether the stored highest offer differs from the current one
func offerDrifted(token schema.Token, offer *domain.Offer) bool {
	if offer == nil {
		return token.HighestOfferID != nil
	}
	if token.HighestOfferID == nil || *token.HighestOfferID != offer.ID {
		return true
	}
	if !token.HighestOfferPrice.Valid || !token.HighestOfferPrice.Decimal.Equal(offer.Price) {
		return true
	}
	return token.HighestOfferCurrency == nil || *token.HighestOfferCurrency != string(offer.Currency)
}

// sleep waits for the given duration, returning false when interrupted by the context or a stop request
func (s *offerDriftSweeper) sleep(ctx context.Context, duration time.Duration) bool {
	select {
	case <-s.clock.After(duration):
		return true
	case <-ctx.Done():
		return false
	case <-s.stopChan:
		return false
	}
}

func (s *offerDriftSweeper) stopped() bool {
	select {
	case <-s.stopChan:
		return true
	default:
		return false
	}
}

type cursorField struct {
	key *domain.TokenKey
}

func (c cursorField) String() string {
	if c.key == nil {
		return "start"
	}
	return c.key.String()
}
