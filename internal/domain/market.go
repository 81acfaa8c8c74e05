package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a payment currency symbol, e.g. ETH, USDC, XTZ
type Currency string

// Rates maps a payment currency to its common-unit equivalent
type Rates map[Currency]decimal.Decimal

// Convert expresses price in the common unit. ok is false when no rate is known for currency.
func (r Rates) Convert(price decimal.Decimal, currency Currency) (decimal.Decimal, bool) {
	rate, found := r[currency]
	if !found {
		return decimal.Zero, false
	}
	return price.Mul(rate), true
}

// Currencies returns the currencies with a known rate in a stable order
func (r Rates) Currencies() []Currency {
	currencies := make([]Currency, 0, len(r))
	for c := range r {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })
	return currencies
}

// Attribute is a single token trait
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     string `json:"value"`
}

// Token is the canonical token as returned by the token service
type Token struct {
	ContractAddress      string          `json:"contract_address"`
	TokenID              string          `json:"token_id"`
	Name                 string          `json:"name"`
	CreatorAddress       string          `json:"creator_address"`
	CreatorName          string          `json:"creator_name"`
	CreatorVerifiedLevel int             `json:"creator_verified_level"`
	CollectionID         *string         `json:"collection_id"`
	Rank                 *int            `json:"rank"`
	Score                *float64        `json:"score"`
	Categories           []string        `json:"categories"`
	Attributes           []Attribute     `json:"attributes"`
	MintedAt             *time.Time      `json:"minted_at"`
	StakingEarnings      decimal.Decimal `json:"staking_earnings"`
	StakingEligible      bool            `json:"staking_eligible"`
}

// Key returns the token key
func (t Token) Key() TokenKey {
	return NewTokenKey(t.ContractAddress, t.TokenID)
}

// Edition is one ownable copy of a token as returned by the token service
type Edition struct {
	ContractAddress        string    `json:"contract_address"`
	TokenID                string    `json:"token_id"`
	EditionID              string    `json:"edition_id"`
	OwnerAddress           string    `json:"owner_address"`
	StakingContractAddress *string   `json:"staking_contract_address"`
	FreeShipping           bool      `json:"free_shipping"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// Sale is a fixed-price listing of one edition
type Sale struct {
	ID              string          `json:"id"`
	ContractAddress string          `json:"contract_address"`
	TokenID         string          `json:"token_id"`
	EditionID       string          `json:"edition_id"`
	Price           decimal.Decimal `json:"price"`
	Currency        Currency        `json:"currency"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TokenKey returns the key of the token the sale lists
func (s Sale) TokenKey() TokenKey {
	return NewTokenKey(s.ContractAddress, s.TokenID)
}

// Auction is an auction of one edition, active or ended but not yet settled
type Auction struct {
	ID              string          `json:"id"`
	ContractAddress string          `json:"contract_address"`
	TokenID         string          `json:"token_id"`
	EditionID       string          `json:"edition_id"`
	ReservePrice    decimal.Decimal `json:"reserve_price"`
	HighestBid      decimal.Decimal `json:"highest_bid"`
	Currency        Currency        `json:"currency"`
	EndTime         time.Time       `json:"end_time"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TokenKey returns the key of the token the auction lists
func (a Auction) TokenKey() TokenKey {
	return NewTokenKey(a.ContractAddress, a.TokenID)
}

// Price returns the comparable auction price: the highest bid, or the reserve price when higher
func (a Auction) Price() decimal.Decimal {
	return decimal.Max(a.HighestBid, a.ReservePrice)
}

// Offer is a standing bid on a token or on any token of a collection
type Offer struct {
	ID              string          `json:"id"`
	ContractAddress string          `json:"contract_address"`
	TokenID         *string         `json:"token_id"`
	CollectionID    *string         `json:"collection_id"`
	Price           decimal.Decimal `json:"price"`
	Currency        Currency        `json:"currency"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TargetToken returns the token the offer is made on, or nil for a collection offer
func (o Offer) TargetToken() *TokenKey {
	if o.TokenID == nil {
		return nil
	}
	key := NewTokenKey(o.ContractAddress, *o.TokenID)
	return &key
}

// OfferTarget is either a token or a collection
type OfferTarget struct {
	Token        *TokenKey
	CollectionID *string
}

// Collection is the canonical collection as returned by the token service
type Collection struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Slug           string    `json:"slug"`
	CreatorAddress string    `json:"creator_address"`
	VerifiedLevel  int       `json:"verified_level"`
	Visible        bool      `json:"visible"`
	CreatedAt      time.Time `json:"created_at"`
}

// User is the canonical user as returned by the user service
type User struct {
	Address       string  `json:"address"`
	Username      string  `json:"username"`
	DisplayName   string  `json:"display_name"`
	Bio           string  `json:"bio"`
	VerifiedLevel int     `json:"verified_level"`
	AvatarURL     *string `json:"avatar_url"`
}

// AssetKind is the kind of a generated media asset
type AssetKind string

const (
	AssetKindImage     AssetKind = "image"
	AssetKindAnimation AssetKind = "animation"
	AssetKindThumbnail AssetKind = "thumbnail"
	AssetKindAvatar    AssetKind = "avatar"
	AssetKindBanner    AssetKind = "banner"
)

// Asset is a generated media asset
type Asset struct {
	ID        string    `json:"id"`
	Kind      AssetKind `json:"kind"`
	Variant   string    `json:"variant"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mime_type"`
	CreatedAt time.Time `json:"created_at"`
}
