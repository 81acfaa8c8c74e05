package marketplace

import (
	"context"
	"errors"
	"net/url"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// OfferService defines the offer service client operations to enable mocking
//
//go:generate mockgen -source=offer.go -destination=../../mocks/offer_service.go -package=mocks -mock_names=OfferService=MockOfferService
type OfferService interface {
	// GetHighestOffer fetches the highest standing offer on a token or a collection, nil when there is none
	GetHighestOffer(ctx context.Context, target domain.OfferTarget) (*domain.Offer, error)
	// GetHighestOffersBatch fetches the highest standing offer of several tokens.
	// Tokens without an offer are absent from the result.
	GetHighestOffersBatch(ctx context.Context, keys []domain.TokenKey) (map[domain.TokenKey]domain.Offer, error)
}

type offerClient struct {
	httpClient adapter.HTTPClient
	baseURL    string
}

// NewOfferService creates a new offer service client
func NewOfferService(httpClient adapter.HTTPClient, baseURL string) OfferService {
	return &offerClient{httpClient: httpClient, baseURL: baseURL}
}

func (c *offerClient) GetHighestOffer(ctx context.Context, target domain.OfferTarget) (*domain.Offer, error) {
	var q url.Values
	switch {
	case target.Token != nil:
		q = tokenQuery(*target.Token)
	case target.CollectionID != nil:
		q = url.Values{}
		q.Set("collection_id", *target.CollectionID)
	default:
		return nil, errors.New("offer target must be a token or a collection")
	}

	var resp response[*domain.Offer]
	if err := c.httpClient.Get(ctx, endpoint(c.baseURL, "offers", "highest")+"?"+q.Encode(), &resp); err != nil {
		if adapter.IsNotFound(err) {
			return nil, nil
		}
		return nil, wrapError("get highest offer", err)
	}
	return resp.Result, nil
}

type tokenRef struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
}

type highestOffersBatchRequest struct {
	Tokens []tokenRef `json:"tokens"`
}

func (c *offerClient) GetHighestOffersBatch(ctx context.Context, keys []domain.TokenKey) (map[domain.TokenKey]domain.Offer, error) {
	offers := make(map[domain.TokenKey]domain.Offer, len(keys))
	if len(keys) == 0 {
		return offers, nil
	}

	req := highestOffersBatchRequest{Tokens: make([]tokenRef, 0, len(keys))}
	for _, k := range keys {
		req.Tokens = append(req.Tokens, tokenRef{ContractAddress: k.ContractAddress, TokenID: k.TokenID})
	}

	var resp response[[]domain.Offer]
	if err := c.httpClient.PostJSON(ctx, endpoint(c.baseURL, "offers", "highest", "batch"), req, &resp); err != nil {
		return nil, wrapError("get highest offers batch", err)
	}

	for _, offer := range resp.Result {
		target := offer.TargetToken()
		if target == nil {
			continue
		}
		offers[*target] = offer
	}
	return offers, nil
}
