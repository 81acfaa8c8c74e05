package marketplace

import (
	"context"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// TokenService defines the token/edition service client operations to enable mocking
//
//go:generate mockgen -source=token.go -destination=../../mocks/token_service.go -package=mocks -mock_names=TokenService=MockTokenService
type TokenService interface {
	// GetToken fetches the canonical token, domain.ErrNotFound when absent
	GetToken(ctx context.Context, key domain.TokenKey) (*domain.Token, error)
	// ListEditions fetches all editions of a token
	ListEditions(ctx context.Context, key domain.TokenKey) ([]domain.Edition, error)
	// GetCollection fetches the canonical collection, domain.ErrNotFound when absent
	GetCollection(ctx context.Context, id string) (*domain.Collection, error)
	// DeleteToken deletes a token upstream
	DeleteToken(ctx context.Context, key domain.TokenKey) error
	// DeleteCollection deletes a collection upstream
	DeleteCollection(ctx context.Context, id string) error
}

type tokenClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewTokenService creates a new token service client
func NewTokenService(httpClient adapter.HTTPClient, baseURL string) TokenService {
	return &tokenClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *tokenClient) GetToken(ctx context.Context, key domain.TokenKey) (*domain.Token, error) {
	var resp response[domain.Token]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "tokens", key.ContractAddress, key.TokenID), &resp); err != nil {
		return nil, wrapError("get token", err)
	}
	return &resp.Result, nil
}

func (c *tokenClient) ListEditions(ctx context.Context, key domain.TokenKey) ([]domain.Edition, error) {
	var resp response[[]domain.Edition]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "tokens", key.ContractAddress, key.TokenID, "editions"), &resp); err != nil {
		return nil, wrapError("list editions", err)
	}
	return resp.Result, nil
}

func (c *tokenClient) GetCollection(ctx context.Context, id string) (*domain.Collection, error) {
	var resp response[domain.Collection]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "collections", id), &resp); err != nil {
		return nil, wrapError("get collection", err)
	}
	return &resp.Result, nil
}

func (c *tokenClient) DeleteToken(ctx context.Context, key domain.TokenKey) error {
	if err := c.httpClient.Delete(ctx, endpoint(c.baseURL, "tokens", key.ContractAddress, key.TokenID)); err != nil {
		return wrapError("delete token", err)
	}
	return nil
}

func (c *tokenClient) DeleteCollection(ctx context.Context, id string) error {
	if err := c.httpClient.Delete(ctx, endpoint(c.baseURL, "collections", id)); err != nil {
		return wrapError("delete collection", err)
	}
	return nil
}
