package bridge

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/dispatcher"
	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/logger"
	natsprovider "github.com/feral-file/ff-market-sync/internal/providers/jetstream"
)

// Config holds the configuration for the notification bridge
type Config struct {
	URL             string
	StreamName      string
	ConsumerName    string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	ConnectionName  string
	AckWaitTimeout  time.Duration
	MaxDeliver      int
	WorkerPoolSize  int
	WorkerQueueSize int
}

// Bridge defines the interface for the notification bridge
type Bridge interface {
	// Run consumes notifications until the context is canceled
	Run(ctx context.Context) error
	// Close closes the bridge and cleans up resources
	Close()
}

type bridge struct {
	nc         adapter.NatsConn
	js         adapter.JetStream
	dispatcher dispatcher.Dispatcher
	json       adapter.JSON
	config     Config
}

// NewBridge connects to NATS and creates a new notification bridge
func NewBridge(
	cfg Config,
	natsJS adapter.NatsJetStream,
	d dispatcher.Dispatcher,
	jsonAdapter adapter.JSON,
) (Bridge, error) {
	nc, js, err := natsJS.Connect(cfg.URL, natsprovider.ConnectOptions(cfg.ConnectionName, cfg.MaxReconnects, cfg.ReconnectWait)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS and create JetStream: %w", err)
	}

	return &bridge{
		nc:         nc,
		js:         js,
		dispatcher: d,
		json:       jsonAdapter,
		config:     cfg,
	}, nil
}

// Run starts consuming the notification subjects
func (b *bridge) Run(ctx context.Context) error {
	logger.InfoCtx(ctx, "Starting notification bridge", zap.String("stream", b.config.StreamName), zap.String("consumer", b.config.ConsumerName))

	consumerConfig := jetstream.ConsumerConfig{
		Durable:       b.config.ConsumerName,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       b.config.AckWaitTimeout,
		MaxDeliver:    b.config.MaxDeliver,
		FilterSubject: b.config.SubjectPrefix + ".>",
	}

	consumer, err := b.js.CreateOrUpdateConsumer(ctx, b.config.StreamName, consumerConfig)
	if err != nil {
		return fmt.Errorf("failed to create/update consumer: %w", err)
	}

	consumerInfo, err := consumer.Info(ctx)
	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}
	logger.InfoCtx(ctx, "Consumer created/retrieved", zap.String("consumer", consumerInfo.Name))

	pool := pond.NewPool(
		max(b.config.WorkerPoolSize, 1),
		pond.WithQueueSize(max(b.config.WorkerQueueSize, 1)),
		pond.WithContext(ctx),
	)
	defer pool.StopAndWait()

	// Submit blocks while the queue is full, which holds back the pull consumer
	sub, err := consumer.Consume(func(msg adapter.Message) {
		pool.Submit(func() {
			b.handleMessage(ctx, msg)
		})
	})
	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	defer sub.Stop()

	logger.InfoCtx(ctx, "Started consuming notifications")

	<-ctx.Done()
	logger.InfoCtx(ctx, "Shutting down notification bridge")
	return ctx.Err()
}

// handleMessage processes a single notification and settles the message
func (b *bridge) handleMessage(ctx context.Context, msg adapter.Message) {
	var deliveries uint64
	if metadata, err := msg.Metadata(); err == nil && metadata != nil {
		deliveries = metadata.NumDelivered
	}

	var notification domain.Notification
	if err := b.json.Unmarshal(msg.Data(), &notification); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to unmarshal notification"), zap.String("subject", msg.Subject()))
		b.term(ctx, msg)
		return
	}

	fields := []zap.Field{
		zap.String("operation", string(notification.Operation)),
		zap.String("key", notification.Key),
		zap.Uint64("deliveryCount", deliveries),
	}
	logger.InfoCtx(ctx, "Received notification", fields...)

	stopProgress := b.keepInProgress(ctx, msg)
	err := b.dispatcher.Dispatch(ctx, notification)
	stopProgress()

	if err != nil {
		if errors.Is(err, domain.ErrInvalidNotification) {
			logger.ErrorCtx(ctx, err, append(fields, zap.String("message", "Dropping malformed notification"))...)
			b.term(ctx, msg)
			return
		}

		logger.ErrorCtx(ctx, err, append(fields, zap.String("message", "Failed to dispatch notification"))...)
		if err := msg.Nak(); err != nil {
			logger.ErrorCtx(ctx, err, zap.String("message", "Failed to NAK message"))
		}
		return
	}

	if err := msg.Ack(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to ACK message"))
	}
}

// keepInProgress extends the ack deadline of msg every half AckWait until the returned func is called
func (b *bridge) keepInProgress(ctx context.Context, msg adapter.Message) func() {
	interval := b.config.AckWaitTimeout / 2
	if interval <= 0 {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := msg.InProgress(); err != nil {
					logger.WarnCtx(ctx, "Failed to extend ack deadline", zap.Error(err), zap.String("subject", msg.Subject()))
				}
			}
		}
	}()

	// the heartbeat must be stopped before the message is settled
	return func() {
		close(done)
		<-finished
	}
}

func (b *bridge) term(ctx context.Context, msg adapter.Message) {
	if err := msg.Term(); err != nil {
		logger.ErrorCtx(ctx, err, zap.String("message", "Failed to terminate message"))
	}
}

// Close closes the bridge and cleans up resources
func (b *bridge) Close() {
	if b.nc == nil {
		return
	}

	b.nc.Close()
}
