package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

// CursorStore defines the interface for storing and retrieving sweeper resume positions
//
//go:generate mockgen -source=cursor_store.go -destination=../mocks/cursor_store.go -package=mocks -mock_names=CursorStore=MockCursorStore
type CursorStore interface {
	// GetSweepCursor retrieves the last token key processed by a sweeper, nil when the sweep starts over
	GetSweepCursor(ctx context.Context, sweeper string) (*domain.TokenKey, error)
	// SetSweepCursor stores the last token key processed by a sweeper; nil resets it
	SetSweepCursor(ctx context.Context, sweeper string, key *domain.TokenKey) error
}

type cursorStore struct {
	db *gorm.DB
}

// NewCursorStore creates a new cursor store
func NewCursorStore(db *gorm.DB) CursorStore {
	return &cursorStore{db: db}
}

func sweepCursorKey(sweeper string) string {
	return fmt.Sprintf("sweep_cursor:%s", sweeper)
}

// GetSweepCursor retrieves the last token key processed by a sweeper
func (s *cursorStore) GetSweepCursor(ctx context.Context, sweeper string) (*domain.TokenKey, error) {
	var kv schema.KeyValueStore
	err := s.db.WithContext(ctx).Where("key = ?", sweepCursorKey(sweeper)).First(&kv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get sweep cursor: %w", err)
	}

	if kv.Value == "" {
		return nil, nil
	}

	key, err := domain.ParseTokenKey(kv.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse sweep cursor: %w", err)
	}

	return &key, nil
}

// SetSweepCursor stores the last token key processed by a sweeper
func (s *cursorStore) SetSweepCursor(ctx context.Context, sweeper string, key *domain.TokenKey) error {
	kv := schema.KeyValueStore{Key: sweepCursorKey(sweeper)}
	if key != nil {
		kv.Value = key.String()
	}

	if err := s.db.WithContext(ctx).Save(&kv).Error; err != nil {
		return fmt.Errorf("failed to set sweep cursor: %w", err)
	}

	return nil
}
