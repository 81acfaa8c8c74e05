package marketplace

import (
	"context"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// AuctionService defines the auction service client operations to enable mocking
//
//go:generate mockgen -source=auction.go -destination=../../mocks/auction_service.go -package=mocks -mock_names=AuctionService=MockAuctionService
type AuctionService interface {
	// GetAuction fetches an auction by id, domain.ErrNotFound when absent
	GetAuction(ctx context.Context, id string) (*domain.Auction, error)
	// ListActiveAuctions fetches the running and the ended but unsettled auctions of a token
	ListActiveAuctions(ctx context.Context, key domain.TokenKey) ([]domain.Auction, error)
}

type auctionClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewAuctionService creates a new auction service client
func NewAuctionService(httpClient adapter.HTTPClient, baseURL string) AuctionService {
	return &auctionClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *auctionClient) GetAuction(ctx context.Context, id string) (*domain.Auction, error) {
	var resp response[domain.Auction]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "auctions", id), &resp); err != nil {
		return nil, wrapError("get auction", err)
	}
	return &resp.Result, nil
}

func (c *auctionClient) ListActiveAuctions(ctx context.Context, key domain.TokenKey) ([]domain.Auction, error) {
	q := tokenQuery(key)
	q.Add("status", "active")
	q.Add("status", "to_settle")

	var resp response[[]domain.Auction]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "auctions")+"?"+q.Encode(), &resp); err != nil {
		return nil, wrapError("list active auctions", err)
	}
	return resp.Result, nil
}
