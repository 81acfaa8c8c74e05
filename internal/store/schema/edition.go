package schema

import (
	"time"

	"github.com/shopspring/decimal"
)

// Edition represents the editions table - one ownable copy of a token with its own listing pointers.
// The full set of a token is replaced on every token rebuild.
type Edition struct {
	ContractAddress string `gorm:"column:contract_address;primaryKey;type:text"`
	TokenID         string `gorm:"column:token_id;primaryKey;type:text"`
	EditionID       string `gorm:"column:edition_id;primaryKey;type:text"`
	// OwnerAddress is the current owner of the edition
	OwnerAddress string `gorm:"column:owner_address;not null;type:text;index:idx_editions_owner_address"`
	// StakingContractAddress is set while the edition is staked
	StakingContractAddress *string `gorm:"column:staking_contract_address;type:text"`
	FreeShipping           bool    `gorm:"column:free_shipping;not null;default:false"`

	SaleID       *string             `gorm:"column:sale_id;type:text"`
	SalePrice    decimal.NullDecimal `gorm:"column:sale_price;type:numeric"`
	SaleCurrency *string             `gorm:"column:sale_currency;type:text"`

	AuctionID       *string             `gorm:"column:auction_id;type:text"`
	AuctionPrice    decimal.NullDecimal `gorm:"column:auction_price;type:numeric"`
	AuctionCurrency *string             `gorm:"column:auction_currency;type:text"`
	AuctionEndTime  *time.Time          `gorm:"column:auction_end_time"`

	// LastListedAt is the creation time of the latest listing of the edition
	LastListedAt *time.Time `gorm:"column:last_listed_at"`
	// UpdatedAt is max(LastListedAt, LastTransferredAt)
	UpdatedAt         time.Time `gorm:"column:updated_at;not null;autoUpdateTime:false"`
	LastTransferredAt time.Time `gorm:"column:last_transferred_at;not null"`
}

// TableName specifies the table name for the Edition model
func (Edition) TableName() string {
	return "editions"
}

// Staked reports whether the edition is held by a staking contract
func (e Edition) Staked() bool {
	return e.StakingContractAddress != nil
}
