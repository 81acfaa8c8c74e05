package marketplace

import (
	"context"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// SaleService defines the sale service client operations to enable mocking
//
//go:generate mockgen -source=sale.go -destination=../../mocks/sale_service.go -package=mocks -mock_names=SaleService=MockSaleService
type SaleService interface {
	// GetSale fetches a sale by id, domain.ErrNotFound when absent
	GetSale(ctx context.Context, id string) (*domain.Sale, error)
	// ListActiveSales fetches the currently active sales of a token
	ListActiveSales(ctx context.Context, key domain.TokenKey) ([]domain.Sale, error)
}

type saleClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewSaleService creates a new sale service client
func NewSaleService(httpClient adapter.HTTPClient, baseURL string) SaleService {
	return &saleClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *saleClient) GetSale(ctx context.Context, id string) (*domain.Sale, error) {
	var resp response[domain.Sale]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "sales", id), &resp); err != nil {
		return nil, wrapError("get sale", err)
	}
	return &resp.Result, nil
}

func (c *saleClient) ListActiveSales(ctx context.Context, key domain.TokenKey) ([]domain.Sale, error) {
	q := tokenQuery(key)
	q.Set("status", "active")

	var resp response[[]domain.Sale]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "sales")+"?"+q.Encode(), &resp); err != nil {
		return nil, wrapError("list active sales", err)
	}
	return resp.Result, nil
}
