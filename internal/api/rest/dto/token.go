package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-market-sync/internal/query"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

// ListingResponse is a price pointer to a sale, an auction or an offer
type ListingResponse struct {
	ID       string     `json:"id"`
	Price    string     `json:"price"`
	Currency string     `json:"currency"`
	EndTime  *time.Time `json:"end_time,omitempty"`
}

// EditionResponse represents one edition of a listed token
type EditionResponse struct {
	EditionID              string           `json:"edition_id"`
	OwnerAddress           string           `json:"owner_address"`
	StakingContractAddress *string          `json:"staking_contract_address,omitempty"`
	FreeShipping           bool             `json:"free_shipping"`
	Sale                   *ListingResponse `json:"sale,omitempty"`
	Auction                *ListingResponse `json:"auction,omitempty"`
	LastListedAt           *time.Time       `json:"last_listed_at,omitempty"`
	LastTransferredAt      time.Time        `json:"last_transferred_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// TokenResponse represents a listed token with its editions
type TokenResponse struct {
	ContractAddress      string          `json:"contract_address"`
	TokenID              string          `json:"token_id"`
	Version              int64           `json:"version"`
	Name                 string          `json:"name"`
	CreatorAddress       string          `json:"creator_address"`
	CreatorName          string          `json:"creator_name"`
	CreatorVerifiedLevel int             `json:"creator_verified_level"`
	CollectionID         *string         `json:"collection_id,omitempty"`
	Rank                 *int            `json:"rank,omitempty"`
	Score                *string         `json:"score,omitempty"`
	Categories           json.RawMessage `json:"categories"`
	Attributes           json.RawMessage `json:"attributes"`
	Media                json.RawMessage `json:"media"`
	MintedAt             *time.Time      `json:"minted_at,omitempty"`
	StakingEarnings      string          `json:"staking_earnings"`
	StakingEligible      bool            `json:"staking_eligible"`

	EditionsCount       int `json:"editions_count"`
	EditionsOnSale      int `json:"editions_on_sale"`
	EditionsInGraveyard int `json:"editions_in_graveyard"`

	UpdatedAt         *time.Time `json:"updated_at,omitempty"`
	LastTransferredAt *time.Time `json:"last_transferred_at,omitempty"`
	LastListedAt      *time.Time `json:"last_listed_at,omitempty"`

	MinSale      *ListingResponse `json:"min_sale,omitempty"`
	MaxSale      *ListingResponse `json:"max_sale,omitempty"`
	MinAuction   *ListingResponse `json:"min_auction,omitempty"`
	HighestOffer *ListingResponse `json:"highest_offer,omitempty"`

	Editions []EditionResponse `json:"editions"`
}

// ListTokensResponse is one page of listed tokens
type ListTokensResponse struct {
	Items   []TokenResponse `json:"items"`
	Total   uint64          `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
	HasMore bool            `json:"has_more"`
}

// MapTokenPageToResponse maps a query page to its API response
func MapTokenPageToResponse(page *query.TokenPage) ListTokensResponse {
	items := make([]TokenResponse, len(page.Items))
	for i, item := range page.Items {
		items[i] = MapTokenToResponse(item.Token, item.Editions)
	}
	return ListTokensResponse{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
		HasMore: page.HasMore,
	}
}

// MapTokenToResponse maps a token row and its editions to the API response
func MapTokenToResponse(t schema.Token, editions []schema.Edition) TokenResponse {
	resp := TokenResponse{
		ContractAddress:      t.ContractAddress,
		TokenID:              t.TokenID,
		Version:              t.Version,
		Name:                 t.Name,
		CreatorAddress:       t.CreatorAddress,
		CreatorName:          t.CreatorName,
		CreatorVerifiedLevel: t.CreatorVerifiedLevel,
		CollectionID:         t.CollectionID,
		Rank:                 t.Rank,
		Score:                nullDecimalString(t.Score),
		Categories:           rawArray(t.Categories),
		Attributes:           rawArray(t.Attributes),
		Media:                rawArray(t.Media),
		MintedAt:             t.MintedAt,
		StakingEarnings:      t.StakingEarnings.String(),
		StakingEligible:      t.StakingEligible,
		EditionsCount:        t.EditionsCount,
		EditionsOnSale:       t.EditionsOnSale,
		EditionsInGraveyard:  t.EditionsInGraveyard,
		UpdatedAt:            t.UpdatedAt,
		LastTransferredAt:    t.LastTransferredAt,
		LastListedAt:         t.LastListedAt,
		MinSale:              listing(t.MinSaleID, t.MinSalePrice, t.MinSaleCurrency, nil),
		MaxSale:              listing(t.MaxSaleID, t.MaxSalePrice, t.MaxSaleCurrency, nil),
		MinAuction:           listing(t.MinAuctionID, t.MinAuctionPrice, t.MinAuctionCurrency, t.MinAuctionEndTime),
		HighestOffer:         listing(t.HighestOfferID, t.HighestOfferPrice, t.HighestOfferCurrency, nil),
		Editions:             make([]EditionResponse, len(editions)),
	}

	for i, e := range editions {
		resp.Editions[i] = EditionResponse{
			EditionID:              e.EditionID,
			OwnerAddress:           e.OwnerAddress,
			StakingContractAddress: e.StakingContractAddress,
			FreeShipping:           e.FreeShipping,
			Sale:                   listing(e.SaleID, e.SalePrice, e.SaleCurrency, nil),
			Auction:                listing(e.AuctionID, e.AuctionPrice, e.AuctionCurrency, e.AuctionEndTime),
			LastListedAt:           e.LastListedAt,
			LastTransferredAt:      e.LastTransferredAt,
			UpdatedAt:              e.UpdatedAt,
		}
	}

	return resp
}

func listing(id *string, price decimal.NullDecimal, currency *string, endTime *time.Time) *ListingResponse {
	if id == nil {
		return nil
	}
	resp := &ListingResponse{ID: *id, EndTime: endTime}
	if price.Valid {
		resp.Price = price.Decimal.String()
	}
	if currency != nil {
		resp.Currency = *currency
	}
	return resp
}

func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

func rawArray(b []byte) json.RawMessage {
	if len(b) == 0 {
		return json.RawMessage("[]")
	}
	return json.RawMessage(b)
}
