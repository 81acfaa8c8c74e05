// Package dedup collapses bursts of identical rebuild requests and retries
// rebuilds failing on transient store contention.
package dedup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	"github.com/feral-file/ff-market-sync/internal/store"
)

// Config holds the dedup and retry settings
type Config struct {
	// Window is how long a request waits for a newer identical request before running
	Window time.Duration
	// MaxRetries caps the retries after the first attempt
	MaxRetries int
	// BaseDelay is the per-attempt increment of the random retry delay upper bound
	BaseDelay time.Duration
}

// Request identifies a rebuild invocation. Two requests with equal fields are identical.
type Request struct {
	Operation string `json:"operation"`
	Arguments any    `json:"arguments"`
	// Scope is the invocation context, e.g. the handler the request is routed to
	Scope string `json:"scope"`
}

// Middleware deduplicates and retries rebuild invocations.
// The pending map is per process: identical requests on different replicas both run.
type Middleware struct {
	config  Config
	clock   adapter.Clock
	jcs     adapter.JCS
	pending sync.Map // fingerprint -> request id
}

// New creates a new dedup middleware
func New(cfg Config, clock adapter.Clock, jcs adapter.JCS) *Middleware {
	return &Middleware{
		config: cfg,
		clock:  clock,
		jcs:    jcs,
	}
}

// Fingerprint returns the stable hash identifying identical requests
func (m *Middleware) Fingerprint(req Request) (string, error) {
	return adapter.CanonicalHash(m.jcs, req)
}

// Do runs fn once the dedupe window has passed without a newer identical request.
// It returns domain.ErrSuperseded, without running fn, when a newer identical request arrived meanwhile.
// Transient contention errors returned by fn are retried, anything else is returned as is.
func Do[T any](ctx context.Context, m *Middleware, req Request, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	fingerprint, err := m.Fingerprint(req)
	if err != nil {
		return zero, fmt.Errorf("failed to fingerprint request: %w", err)
	}

	id := ulid.Make().String()
	m.pending.Store(fingerprint, id)

	select {
	case <-ctx.Done():
		m.pending.CompareAndDelete(fingerprint, id)
		return zero, ctx.Err()
	case <-m.clock.After(m.config.Window):
	}

	if !m.pending.CompareAndDelete(fingerprint, id) {
		logger.DebugCtx(ctx, "Request superseded by a newer identical request",
			zap.String("operation", req.Operation),
			zap.String("fingerprint", fingerprint),
			zap.String("requestID", id))
		return zero, domain.ErrSuperseded
	}

	return retry(ctx, m.config, req.Operation, fingerprint, fn)
}

func retry[T any](ctx context.Context, cfg Config, operation, fingerprint string, fn func(ctx context.Context) (T, error)) (T, error) {
	var result T
	attempt := 0

	op := func() error {
		attempt++
		r, err := fn(ctx)
		if err != nil {
			if store.IsTransientContention(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		result = r
		return nil
	}

	b := backoff.WithContext(
		backoff.WithMaxRetries(newJitterBackOff(cfg.BaseDelay), uint64(max(cfg.MaxRetries, 0))), //nolint:gosec,G115
		ctx,
	)

	notify := func(err error, wait time.Duration) {
		logger.WarnCtx(ctx, "Transient contention, retrying",
			zap.Error(err),
			zap.String("operation", operation),
			zap.String("fingerprint", fingerprint),
			zap.Int("attempt", attempt),
			zap.Duration("next_retry_in", wait))
	}

	if err := backoff.RetryNotify(op, b, notify); err != nil {
		var zero T
		if store.IsTransientContention(err) {
			return zero, fmt.Errorf("retries exhausted after %d attempts: %w", attempt, err)
		}
		return zero, err
	}

	return result, nil
}
