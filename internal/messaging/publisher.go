package messaging

import (
	"context"

	"github.com/feral-file/ff-market-sync/internal/domain"
)

// Publisher defines the interface for publishing change notifications to the message queue
//
//go:generate mockgen -source=publisher.go -destination=../mocks/publisher.go -package=mocks -mock_names=Publisher=MockPublisher
type Publisher interface {
	// PublishNotification publishes a change notification to the message broker
	PublishNotification(ctx context.Context, notification domain.Notification) error
	// Close closes the connection
	Close()
}

// Subject returns the subject a notification operation is published on, e.g. market.update_token
func Subject(prefix string, operation domain.Operation) string {
	return prefix + "." + string(operation)
}
