package store

import (
	"context"

	"gorm.io/datatypes"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

// Condition is a compiled SQL fragment with its positional parameters
type Condition struct {
	Clause string
	Params []any
}

// TokenQuery is a compiled token listing query.
// Joins and Where are shared by the page and the count query, Order only applies to the page.
type TokenQuery struct {
	Joins  []Condition
	Where  []Condition
	Order  []Condition
	Limit  int
	Offset int
}

// SaveTokenAggregateInput represents the data required to write a rebuilt token aggregate
type SaveTokenAggregateInput struct {
	Token    schema.Token
	Editions []schema.Edition
	// ExpectedVersion is the version read before the rebuild, 0 when the row was absent
	ExpectedVersion int64
}

// EditionDeleteResult describes what a DeleteEdition call removed
type EditionDeleteResult int

const (
	// EditionAbsent means the edition did not exist
	EditionAbsent EditionDeleteResult = iota
	// EditionRemoved means the edition was removed and the token kept its other editions
	EditionRemoved
	// TokenRemoved means the last edition was removed together with its token
	TokenRemoved
)

// Store defines the interface for read model operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetToken retrieves a token aggregate by key, nil when absent
	GetToken(ctx context.Context, key domain.TokenKey) (*schema.Token, error)
	// SaveTokenAggregate writes the token row under optimistic concurrency and replaces its full edition set.
	// It returns domain.ErrVersionMismatch when the stored version differs from the expected one.
	SaveTokenAggregate(ctx context.Context, input SaveTokenAggregateInput) error
	// PatchTokenMedia replaces the media of an existing token, reporting whether the token exists
	PatchTokenMedia(ctx context.Context, key domain.TokenKey, media datatypes.JSON) (bool, error)
	// DeleteToken removes a token and all its editions, reporting whether the token existed
	DeleteToken(ctx context.Context, key domain.TokenKey) (bool, error)
	// DeleteEdition removes one edition, and the token too when it was the last one
	DeleteEdition(ctx context.Context, key domain.TokenKey, editionID string) (EditionDeleteResult, error)
	// GetEditionsByTokenKeys retrieves the editions of the given tokens, grouped by token key
	GetEditionsByTokenKeys(ctx context.Context, keys []domain.TokenKey) (map[domain.TokenKey][]schema.Edition, error)
	// QueryTokens retrieves one page of tokens for a compiled query
	QueryTokens(ctx context.Context, query TokenQuery) ([]schema.Token, error)
	// CountTokens counts the tokens matching a compiled query, ignoring its order and pagination
	CountTokens(ctx context.Context, query TokenQuery) (uint64, error)
	// ListTokenOfferStates pages through tokens in key order, returning keys and highest offer fields only
	ListTokenOfferStates(ctx context.Context, after *domain.TokenKey, limit int) ([]schema.Token, error)

	// GetCollection retrieves a collection by id, nil when absent
	GetCollection(ctx context.Context, id string) (*schema.Collection, error)
	// CreateCollectionIfAbsent inserts the collection unless one exists with the same id, reporting whether it inserted
	CreateCollectionIfAbsent(ctx context.Context, collection *schema.Collection) (bool, error)
	// UpsertCollection inserts or fully overwrites a collection
	UpsertCollection(ctx context.Context, collection *schema.Collection) error
	// DeleteCollection removes a collection, reporting whether it existed
	DeleteCollection(ctx context.Context, id string) (bool, error)

	// GetUser retrieves a user by address, nil when absent
	GetUser(ctx context.Context, address string) (*schema.User, error)
	// UpsertUser inserts or fully overwrites a user
	UpsertUser(ctx context.Context, user *schema.User) error
}
