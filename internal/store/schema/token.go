package schema

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Token represents the tokens table - the denormalized read model of one token,
// rebuilt wholesale from the domain services on every change
type Token struct {
	// ContractAddress is the address of the token contract
	ContractAddress string `gorm:"column:contract_address;primaryKey;type:text"`
	// TokenID is the token id within the contract (string to support very large numbers)
	TokenID string `gorm:"column:token_id;primaryKey;type:text"`
	// Version is advanced by exactly one on every successful write, used for optimistic concurrency
	Version int64 `gorm:"column:version;not null;default:0"`

	Name                 string              `gorm:"column:name;not null;type:text;default:''"`
	CreatorAddress       string              `gorm:"column:creator_address;not null;type:text;index"`
	CreatorName          string              `gorm:"column:creator_name;not null;type:text;default:''"`
	CreatorVerifiedLevel int                 `gorm:"column:creator_verified_level;not null;default:0"`
	CollectionID         *string             `gorm:"column:collection_id;type:text;index"`
	Rank                 *int                `gorm:"column:rank"`
	Score                decimal.NullDecimal `gorm:"column:score;type:numeric"`
	// Categories is a jsonb array of category names
	Categories datatypes.JSON `gorm:"column:categories;type:jsonb;not null;default:'[]'"`
	// Attributes is a jsonb array of {trait_type, value} objects
	Attributes datatypes.JSON `gorm:"column:attributes;type:jsonb;not null;default:'[]'"`
	// Media is a jsonb array of the generated media assets of the token
	Media           datatypes.JSON  `gorm:"column:media;type:jsonb;not null;default:'[]'"`
	MintedAt        *time.Time      `gorm:"column:minted_at"`
	StakingEarnings decimal.Decimal `gorm:"column:staking_earnings;type:numeric;not null;default:0"`
	StakingEligible bool            `gorm:"column:staking_eligible;not null;default:false"`

	// Derived counts
	EditionsCount       int `gorm:"column:editions_count;not null;default:0"`
	EditionsOnSale      int `gorm:"column:editions_on_sale;not null;default:0"`
	EditionsInGraveyard int `gorm:"column:editions_in_graveyard;not null;default:0"`

	// Derived timestamps, the max over all editions
	UpdatedAt         *time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
	LastTransferredAt *time.Time `gorm:"column:last_transferred_at"`
	LastListedAt      *time.Time `gorm:"column:last_listed_at"`

	// Cheapest sale by converted price
	MinSaleID       *string             `gorm:"column:min_sale_id;type:text"`
	MinSalePrice    decimal.NullDecimal `gorm:"column:min_sale_price;type:numeric"`
	MinSaleCurrency *string             `gorm:"column:min_sale_currency;type:text"`
	// Most expensive sale by converted price
	MaxSaleID       *string             `gorm:"column:max_sale_id;type:text"`
	MaxSalePrice    decimal.NullDecimal `gorm:"column:max_sale_price;type:numeric"`
	MaxSaleCurrency *string             `gorm:"column:max_sale_currency;type:text"`
	// Cheapest auction by converted max(highest bid, reserve price)
	MinAuctionID       *string             `gorm:"column:min_auction_id;type:text"`
	MinAuctionPrice    decimal.NullDecimal `gorm:"column:min_auction_price;type:numeric"`
	MinAuctionCurrency *string             `gorm:"column:min_auction_currency;type:text"`
	MinAuctionEndTime  *time.Time          `gorm:"column:min_auction_end_time"`
	// Highest standing offer
	HighestOfferID       *string             `gorm:"column:highest_offer_id;type:text"`
	HighestOfferPrice    decimal.NullDecimal `gorm:"column:highest_offer_price;type:numeric"`
	HighestOfferCurrency *string             `gorm:"column:highest_offer_currency;type:text"`
}

// TableName specifies the table name for the Token model
func (Token) TableName() string {
	return "tokens"
}
