package marketplace

import (
	"context"
	"net/url"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// AssetService defines the media asset service client operations to enable mocking
//
//go:generate mockgen -source=asset.go -destination=../../mocks/asset_service.go -package=mocks -mock_names=AssetService=MockAssetService
type AssetService interface {
	// GetTokenAssets fetches the generated media assets of a token
	GetTokenAssets(ctx context.Context, key domain.TokenKey) ([]domain.Asset, error)
	// GetUserAssets fetches the generated assets of a given kind owned by a user, newest first
	GetUserAssets(ctx context.Context, address string, kind domain.AssetKind) ([]domain.Asset, error)
}

type assetClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewAssetService creates a new asset service client
func NewAssetService(httpClient adapter.HTTPClient, baseURL string) AssetService {
	return &assetClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *assetClient) GetTokenAssets(ctx context.Context, key domain.TokenKey) ([]domain.Asset, error) {
	var resp response[[]domain.Asset]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "tokens", key.ContractAddress, key.TokenID, "assets"), &resp); err != nil {
		return nil, wrapError("get token assets", err)
	}
	return resp.Result, nil
}

func (c *assetClient) GetUserAssets(ctx context.Context, address string, kind domain.AssetKind) ([]domain.Asset, error) {
	q := url.Values{}
	q.Set("kind", string(kind))

	var resp response[[]domain.Asset]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "users", address, "assets")+"?"+q.Encode(), &resp); err != nil {
		return nil, wrapError("get user assets", err)
	}
	return resp.Result, nil
}
