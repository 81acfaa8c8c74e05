package rebuild

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-market-sync/internal/domain"
)

const (
	testContract  = "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB"
	testGraveyard = "0x000000000000000000000000000000000000dEaD"
	testOwner     = "0x1111111111111111111111111111111111111111"
)

var testKey = domain.NewTokenKey(testContract, "1")

func testRates() domain.Rates {
	return domain.Rates{
		"USDC": decimal.NewFromInt(1),
		"ETH":  decimal.NewFromInt(3),
	}
}

func TestDeriveToken_MinSaleUsesConvertedPrice(t *testing.T) {
	snapshot := upstreamSnapshot{
		editions: []domain.Edition{
			{EditionID: "1", OwnerAddress: testOwner},
			{EditionID: "2", OwnerAddress: testOwner},
		},
		sales: []domain.Sale{
			{ID: "A", EditionID: "1", Price: decimal.NewFromInt(100), Currency: "USDC"},
			{ID: "B", EditionID: "2", Price: decimal.NewFromInt(50), Currency: "ETH"},
		},
		rates: testRates(),
	}

	editions := deriveEditions(testKey, snapshot)
	token, err := deriveToken(testKey, snapshot, editions, testGraveyard)
	require.NoError(t, err)

	require.NotNil(t, token.MinSaleID)
	assert.Equal(t, "A", *token.MinSaleID)
	assert.True(t, decimal.NewFromInt(100).Equal(token.MinSalePrice.Decimal))
	assert.Equal(t, "USDC", *token.MinSaleCurrency)

	require.NotNil(t, token.MaxSaleID)
	assert.Equal(t, "B", *token.MaxSaleID)
	assert.Equal(t, 2, token.EditionsOnSale)
}

func TestDeriveToken_UnratedListingsAreIneligible(t *testing.T) {
	snapshot := upstreamSnapshot{
		editions: []domain.Edition{{EditionID: "1", OwnerAddress: testOwner}},
		sales: []domain.Sale{
			{ID: "A", EditionID: "1", Price: decimal.NewFromInt(1), Currency: "XTZ"},
		},
		rates: testRates(),
	}

	editions := deriveEditions(testKey, snapshot)
	token, err := deriveToken(testKey, snapshot, editions, testGraveyard)
	require.NoError(t, err)

	assert.Nil(t, token.MinSaleID)
	assert.Nil(t, token.MaxSaleID)
	// the edition still points at its only sale
	require.NotNil(t, editions[0].SaleID)
	assert.Equal(t, "A", *editions[0].SaleID)
	assert.Equal(t, 1, token.EditionsOnSale)
}

func TestDeriveToken_NoRatesKeepsEditionListings(t *testing.T) {
	snapshot := upstreamSnapshot{
		editions: []domain.Edition{
			{EditionID: "1", OwnerAddress: testOwner},
			{EditionID: "2", OwnerAddress: testOwner},
		},
		sales: []domain.Sale{
			{ID: "A", EditionID: "1", Price: decimal.NewFromInt(1), Currency: "ETH"},
		},
		auctions: []domain.Auction{
			{ID: "X", EditionID: "2", ReservePrice: decimal.NewFromInt(2), Currency: "ETH", EndTime: time.Unix(100, 0)},
		},
	}

	editions := deriveEditions(testKey, snapshot)
	token, err := deriveToken(testKey, snapshot, editions, testGraveyard)
	require.NoError(t, err)

	// no converted price, no token level listing
	assert.Nil(t, token.MinSaleID)
	assert.Nil(t, token.MaxSaleID)
	assert.Nil(t, token.MinAuctionID)

	// listing filters read the edition pointers, which stay set
	require.Len(t, editions, 2)
	require.NotNil(t, editions[0].SaleID)
	assert.Equal(t, "A", *editions[0].SaleID)
	require.NotNil(t, editions[1].AuctionID)
	assert.Equal(t, "X", *editions[1].AuctionID)
	assert.Equal(t, 2, token.EditionsOnSale)
}

func TestDeriveToken_EqualConvertedPricesPickLowestID(t *testing.T) {
	snapshot := upstreamSnapshot{
		editions: []domain.Edition{{EditionID: "1", OwnerAddress: testOwner}},
		sales: []domain.Sale{
			{ID: "s-2", EditionID: "1", Price: decimal.NewFromInt(30), Currency: "USDC"},
			{ID: "s-1", EditionID: "1", Price: decimal.NewFromInt(10), Currency: "ETH"},
		},
		rates: testRates(),
	}

	editions := deriveEditions(testKey, snapshot)
	token, err := deriveToken(testKey, snapshot, editions, testGraveyard)
	require.NoError(t, err)

	assert.Equal(t, "s-1", *token.MinSaleID)
	assert.Equal(t, "s-1", *token.MaxSaleID)
	assert.Equal(t, "s-1", *editions[0].SaleID)
}

func TestDeriveToken_GraveyardCount(t *testing.T) {
	snapshot := upstreamSnapshot{
		editions: []domain.Edition{
			{EditionID: "1", OwnerAddress: "0x000000000000000000000000000000000000dead"},
			{EditionID: "2", OwnerAddress: testOwner},
			{EditionID: "3", OwnerAddress: testGraveyard},
		},
	}

	editions := deriveEditions(testKey, snapshot)
	token, err := deriveToken(testKey, snapshot, editions, testGraveyard)
	require.NoError(t, err)

	assert.Equal(t, 3, token.EditionsCount)
	assert.Equal(t, 2, token.EditionsInGraveyard)
	assert.Equal(t, 0, token.EditionsOnSale)
}

func TestDeriveToken_AuctionPriceIsBidOrReserve(t *testing.T) {
	end := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	snapshot := upstreamSnapshot{
		editions: []domain.Edition{
			{EditionID: "1", OwnerAddress: testOwner},
			{EditionID: "2", OwnerAddress: testOwner},
		},
		auctions: []domain.Auction{
			{ID: "a-1", EditionID: "1", ReservePrice: decimal.NewFromInt(10), HighestBid: decimal.NewFromInt(40), Currency: "USDC", EndTime: end},
			{ID: "a-2", EditionID: "2", ReservePrice: decimal.NewFromInt(20), Currency: "USDC", EndTime: end},
		},
		rates: testRates(),
	}

	editions := deriveEditions(testKey, snapshot)
	token, err := deriveToken(testKey, snapshot, editions, testGraveyard)
	require.NoError(t, err)

	require.NotNil(t, token.MinAuctionID)
	assert.Equal(t, "a-2", *token.MinAuctionID)
	assert.True(t, decimal.NewFromInt(20).Equal(token.MinAuctionPrice.Decimal))
	assert.Equal(t, end, *token.MinAuctionEndTime)
	assert.True(t, decimal.NewFromInt(40).Equal(editions[0].AuctionPrice.Decimal))
}

func TestDeriveEditions_Timestamps(t *testing.T) {
	transferred := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	listed := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)

	snapshot := upstreamSnapshot{
		editions: []domain.Edition{
			{EditionID: "1", OwnerAddress: testOwner, UpdatedAt: transferred},
			{EditionID: "2", OwnerAddress: testOwner, UpdatedAt: transferred},
		},
		sales: []domain.Sale{
			{ID: "A", EditionID: "1", Price: decimal.NewFromInt(1), Currency: "USDC", CreatedAt: listed},
		},
		rates: testRates(),
	}

	editions := deriveEditions(testKey, snapshot)
	require.Len(t, editions, 2)
	assert.Equal(t, listed, editions[0].UpdatedAt)
	assert.Equal(t, transferred, editions[0].LastTransferredAt)
	assert.Equal(t, transferred, editions[1].UpdatedAt)
	assert.Nil(t, editions[1].LastListedAt)

	token, err := deriveToken(testKey, snapshot, editions, testGraveyard)
	require.NoError(t, err)
	assert.Equal(t, listed, *token.UpdatedAt)
	assert.Equal(t, listed, *token.LastListedAt)
	assert.Equal(t, transferred, *token.LastTransferredAt)
}

func TestSortEditions_Numeric(t *testing.T) {
	editions := []domain.Edition{{EditionID: "10"}, {EditionID: "2"}, {EditionID: "1"}, {EditionID: "b"}, {EditionID: "a"}}
	sortEditions(editions)

	var ids []string
	for _, e := range editions {
		ids = append(ids, e.EditionID)
	}
	assert.Equal(t, []string{"1", "2", "10", "a", "b"}, ids)
}

func TestJSONArray(t *testing.T) {
	empty, err := jsonArray[string](nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(empty))

	attrs, err := jsonArray([]domain.Attribute{{TraitType: "Background", Value: "Blue"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"trait_type":"Background","value":"Blue"}]`, string(attrs))
}

func TestSortedAssets(t *testing.T) {
	assets := []domain.Asset{
		{ID: "3", Kind: domain.AssetKindThumbnail, Variant: "small"},
		{ID: "2", Kind: domain.AssetKindImage, Variant: "large"},
		{ID: "1", Kind: domain.AssetKindImage, Variant: "large"},
		{ID: "4", Kind: domain.AssetKindAnimation, Variant: "mp4"},
	}

	sorted := sortedAssets(assets)
	var ids []string
	for _, a := range sorted {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{"4", "1", "2", "3"}, ids)
	// input untouched
	assert.Equal(t, "3", assets[0].ID)
}
