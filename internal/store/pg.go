package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

// editionFieldCount is the number of columns written per edition row
const editionFieldCount = 16

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new PostgreSQL store instance
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// ConfigureConnectionPool configures the connection pool settings for a GORM database connection.
// Zero settings fall back to the defaults of NormalizeConnectionPoolSettings.
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime =
		NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime)

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// NormalizeConnectionPoolSettings applies defaults and clamps pool settings into safe values.
//
// Defaults (when zero):
//   - MaxOpenConns: 20
//   - MaxIdleConns: 5
//   - ConnMaxLifetime: 5 minutes
//   - ConnMaxIdleTime: 10 minutes
func NormalizeConnectionPoolSettings(maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) (int, int, time.Duration, time.Duration) {
	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}

	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	return maxOpenConns, maxIdleConns, connMaxLifetime, connMaxIdleTime
}

// calculateSafeBatchSize computes the batch size for bulk inserts that stays under
// PostgreSQL's limit of 65535 parameters per statement, keeping a fixed headroom
// for statement-level parameters.
func calculateSafeBatchSize(totalRecords int, fieldsPerRecord int) int {
	const maxParams = 65535
	const totalHeadroom = 1000

	availableParams := maxParams - totalHeadroom
	safeBatchSize := max(availableParams/fieldsPerRecord, 1)

	if safeBatchSize > totalRecords {
		return totalRecords
	}

	return safeBatchSize
}

func whereTokenKey(db *gorm.DB, key domain.TokenKey) *gorm.DB {
	return db.Where("contract_address = ? AND token_id = ?", key.ContractAddress, key.TokenID)
}

// GetToken retrieves a token aggregate by key
func (s *pgStore) GetToken(ctx context.Context, key domain.TokenKey) (*schema.Token, error) {
	var token schema.Token
	err := whereTokenKey(s.db.WithContext(ctx), key).First(&token).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get token: %w", err)
	}
	return &token, nil
}

// SaveTokenAggregate writes the token row as a compare-and-swap on its version and
// replaces the edition set of the token in the same transaction
func (s *pgStore) SaveTokenAggregate(ctx context.Context, input SaveTokenAggregateInput) error {
	token := input.Token
	token.Version = input.ExpectedVersion + 1
	key := domain.TokenKey{ContractAddress: token.ContractAddress, TokenID: token.TokenID}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Write the token row
		var result *gorm.DB
		if input.ExpectedVersion == 0 {
			result = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&token)
		} else {
			result = tx.Model(&token).
				Where("version = ?", input.ExpectedVersion).
				Select("*").
				Updates(&token)
		}
		if result.Error != nil {
			return fmt.Errorf("failed to write token: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: token %s expected version %d", domain.ErrVersionMismatch, key, input.ExpectedVersion)
		}

		// 2. Replace the edition set
		if err := whereTokenKey(tx, key).Delete(&schema.Edition{}).Error; err != nil {
			return fmt.Errorf("failed to delete editions: %w", err)
		}
		if len(input.Editions) > 0 {
			batchSize := calculateSafeBatchSize(len(input.Editions), editionFieldCount)
			if err := tx.CreateInBatches(input.Editions, batchSize).Error; err != nil {
				return fmt.Errorf("failed to insert editions: %w", err)
			}
		}

		return nil
	})
}

// PatchTokenMedia replaces the media of an existing token and advances its version
func (s *pgStore) PatchTokenMedia(ctx context.Context, key domain.TokenKey, media datatypes.JSON) (bool, error) {
	result := whereTokenKey(s.db.WithContext(ctx).Model(&schema.Token{}), key).
		Updates(map[string]any{
			"media":   media,
			"version": gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to patch token media: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// DeleteToken removes a token and all its editions
func (s *pgStore) DeleteToken(ctx context.Context, key domain.TokenKey) (bool, error) {
	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := whereTokenKey(tx, key).Delete(&schema.Edition{}).Error; err != nil {
			return fmt.Errorf("failed to delete editions: %w", err)
		}

		result := whereTokenKey(tx, key).Delete(&schema.Token{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete token: %w", result.Error)
		}
		deleted = result.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// DeleteEdition removes one edition. Removing the last edition removes the token as well,
// otherwise the edition count of the token is decremented.
func (s *pgStore) DeleteEdition(ctx context.Context, key domain.TokenKey, editionID string) (EditionDeleteResult, error) {
	outcome := EditionAbsent
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Lock the token row so concurrent edition deletes of the same token serialize
		var token schema.Token
		err := whereTokenKey(tx, key).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("contract_address", "token_id").
			First(&token).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return fmt.Errorf("failed to lock token: %w", err)
		}

		result := whereTokenKey(tx, key).Where("edition_id = ?", editionID).Delete(&schema.Edition{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete edition: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil
		}

		var remaining int64
		if err := whereTokenKey(tx.Model(&schema.Edition{}), key).Count(&remaining).Error; err != nil {
			return fmt.Errorf("failed to count editions: %w", err)
		}

		if remaining == 0 {
			if err := whereTokenKey(tx, key).Delete(&schema.Token{}).Error; err != nil {
				return fmt.Errorf("failed to delete token: %w", err)
			}
			outcome = TokenRemoved
			return nil
		}

		err = whereTokenKey(tx.Model(&schema.Token{}), key).
			Updates(map[string]any{
				"editions_count": remaining,
				"version":        gorm.Expr("version + 1"),
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update edition count: %w", err)
		}
		outcome = EditionRemoved
		return nil
	})
	if err != nil {
		return EditionAbsent, err
	}
	return outcome, nil
}

// GetEditionsByTokenKeys retrieves the editions of the given tokens in a single query
func (s *pgStore) GetEditionsByTokenKeys(ctx context.Context, keys []domain.TokenKey) (map[domain.TokenKey][]schema.Edition, error) {
	result := make(map[domain.TokenKey][]schema.Edition, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	pairs := make([][]any, len(keys))
	for i, key := range keys {
		pairs[i] = []any{key.ContractAddress, key.TokenID}
	}

	var editions []schema.Edition
	err := s.db.WithContext(ctx).
		Where("(contract_address, token_id) IN ?", pairs).
		Order("contract_address, token_id, edition_id").
		Find(&editions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get editions: %w", err)
	}

	for _, edition := range editions {
		key := domain.TokenKey{ContractAddress: edition.ContractAddress, TokenID: edition.TokenID}
		result[key] = append(result[key], edition)
	}

	return result, nil
}

// filteredTokens applies the joins and predicates shared by the page and count queries
func (s *pgStore) filteredTokens(ctx context.Context, query TokenQuery) *gorm.DB {
	db := s.db.WithContext(ctx).Model(&schema.Token{})
	for _, join := range query.Joins {
		db = db.Joins(join.Clause, join.Params...)
	}
	for _, where := range query.Where {
		db = db.Where(where.Clause, where.Params...)
	}
	return db
}

// QueryTokens retrieves one page of tokens for a compiled query
func (s *pgStore) QueryTokens(ctx context.Context, query TokenQuery) ([]schema.Token, error) {
	db := s.filteredTokens(ctx, query).Select("tokens.*")

	// A single ORDER BY expression: gorm replaces rather than appends expression-based order clauses
	if len(query.Order) > 0 {
		clauses := make([]string, len(query.Order))
		var params []any
		for i, order := range query.Order {
			clauses[i] = order.Clause
			params = append(params, order.Params...)
		}
		db = db.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: strings.Join(clauses, ", "), Vars: params, WithoutParentheses: true},
		})
	}

	if query.Limit > 0 {
		db = db.Limit(query.Limit)
	}
	if query.Offset > 0 {
		db = db.Offset(query.Offset)
	}

	var tokens []schema.Token
	if err := db.Find(&tokens).Error; err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	return tokens, nil
}

// CountTokens counts the tokens matching a compiled query
func (s *pgStore) CountTokens(ctx context.Context, query TokenQuery) (uint64, error) {
	var total int64
	if err := s.filteredTokens(ctx, query).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	return uint64(total), nil //nolint:gosec,G115
}

// ListTokenOfferStates pages through tokens in primary key order
func (s *pgStore) ListTokenOfferStates(ctx context.Context, after *domain.TokenKey, limit int) ([]schema.Token, error) {
	db := s.db.WithContext(ctx).
		Model(&schema.Token{}).
		Select("contract_address", "token_id", "collection_id", "highest_offer_id", "highest_offer_price", "highest_offer_currency")
	if after != nil {
		db = db.Where("(contract_address, token_id) > (?, ?)", after.ContractAddress, after.TokenID)
	}

	var tokens []schema.Token
	err := db.Order("contract_address ASC, token_id ASC").Limit(limit).Find(&tokens).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list token offer states: %w", err)
	}
	return tokens, nil
}

// GetCollection retrieves a collection by id
func (s *pgStore) GetCollection(ctx context.Context, id string) (*schema.Collection, error) {
	var collection schema.Collection
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&collection).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get collection: %w", err)
	}
	return &collection, nil
}

// CreateCollectionIfAbsent inserts the collection unless it already exists
func (s *pgStore) CreateCollectionIfAbsent(ctx context.Context, collection *schema.Collection) (bool, error) {
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoNothing: true,
		}).
		Create(collection)
	if result.Error != nil {
		return false, fmt.Errorf("failed to create collection: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// UpsertCollection inserts or fully overwrites a collection
func (s *pgStore) UpsertCollection(ctx context.Context, collection *schema.Collection) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "slug", "creator_address", "verified_level", "visible", "updated_at"}),
		}).
		Create(collection).Error
	if err != nil {
		return fmt.Errorf("failed to upsert collection: %w", err)
	}
	return nil
}

// DeleteCollection removes a collection
func (s *pgStore) DeleteCollection(ctx context.Context, id string) (bool, error) {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&schema.Collection{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete collection: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// GetUser retrieves a user by address
func (s *pgStore) GetUser(ctx context.Context, address string) (*schema.User, error) {
	var user schema.User
	err := s.db.WithContext(ctx).Where("address = ?", address).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// UpsertUser inserts or fully overwrites a user
func (s *pgStore) UpsertUser(ctx context.Context, user *schema.User) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "address"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "display_name", "bio", "verified_level", "avatar_url", "updated_at"}),
		}).
		Create(user).Error
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
