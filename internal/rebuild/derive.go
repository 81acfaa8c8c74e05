package rebuild

import (
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/store/schema"
)

// upstreamSnapshot is everything fetched from the domain services for one token rebuild
type upstreamSnapshot struct {
	token    domain.Token
	editions []domain.Edition
	sales    []domain.Sale
	auctions []domain.Auction
	assets   []domain.Asset
	offer    *domain.Offer
	rates    domain.Rates
}

// listing is the comparable view of a sale or an auction
type listing struct {
	id       string
	price    decimal.Decimal
	currency domain.Currency
}

// cheaper orders listings by converted price then by id. Listings without a rate sort last.
func cheaper(rates domain.Rates, a, b listing) bool {
	ca, okA := rates.Convert(a.price, a.currency)
	cb, okB := rates.Convert(b.price, b.currency)
	if okA != okB {
		return okA
	}
	if okA && !ca.Equal(cb) {
		return ca.LessThan(cb)
	}
	return a.id < b.id
}

// pricier orders listings by converted price descending then by id
func pricier(rates domain.Rates, a, b listing) bool {
	ca, _ := rates.Convert(a.price, a.currency)
	cb, _ := rates.Convert(b.price, b.currency)
	if !ca.Equal(cb) {
		return ca.GreaterThan(cb)
	}
	return a.id < b.id
}

// pick returns the index of the best eligible listing according to better, -1 when none is eligible
func pick(rates domain.Rates, listings []listing, better func(domain.Rates, listing, listing) bool) int {
	best := -1
	for i, l := range listings {
		if _, ok := rates.Convert(l.price, l.currency); !ok {
			continue
		}
		if best == -1 || better(rates, l, listings[best]) {
			best = i
		}
	}
	return best
}

func saleListings(sales []domain.Sale) []listing {
	out := make([]listing, len(sales))
	for i, s := range sales {
		out[i] = listing{id: s.ID, price: s.Price, currency: s.Currency}
	}
	return out
}

func auctionListings(auctions []domain.Auction) []listing {
	out := make([]listing, len(auctions))
	for i, a := range auctions {
		out[i] = listing{id: a.ID, price: a.Price(), currency: a.Currency}
	}
	return out
}

// numericLess compares edition ids numerically when both are digit strings
func numericLess(a, b string) bool {
	if isDigits(a) && isDigits(b) {
		a, b = strings.TrimLeft(a, "0"), strings.TrimLeft(b, "0")
		if len(a) != len(b) {
			return len(a) < len(b)
		}
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func sortEditions(editions []domain.Edition) {
	sort.SliceStable(editions, func(i, j int) bool {
		return numericLess(editions[i].EditionID, editions[j].EditionID)
	})
}

func maxTime(a *time.Time, b time.Time) *time.Time {
	if a == nil || b.After(*a) {
		return &b
	}
	return a
}

func strPtr(s string) *string {
	return &s
}

func nullDecimal(d decimal.Decimal) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// bestSaleByEdition joins each edition with its cheapest sale
func bestSaleByEdition(rates domain.Rates, sales []domain.Sale) map[string]domain.Sale {
	out := make(map[string]domain.Sale)
	for _, s := range sales {
		current, found := out[s.EditionID]
		if !found || cheaper(rates, listing{s.ID, s.Price, s.Currency}, listing{current.ID, current.Price, current.Currency}) {
			out[s.EditionID] = s
		}
	}
	return out
}

// bestAuctionByEdition joins each edition with its cheapest auction
func bestAuctionByEdition(rates domain.Rates, auctions []domain.Auction) map[string]domain.Auction {
	out := make(map[string]domain.Auction)
	for _, a := range auctions {
		current, found := out[a.EditionID]
		if !found || cheaper(rates, listing{a.ID, a.Price(), a.Currency}, listing{current.ID, current.Price(), current.Currency}) {
			out[a.EditionID] = a
		}
	}
	return out
}

// deriveEditions builds the edition rows of a token, one per upstream edition in edition id order
func deriveEditions(key domain.TokenKey, snapshot upstreamSnapshot) []schema.Edition {
	sales := bestSaleByEdition(snapshot.rates, snapshot.sales)
	auctions := bestAuctionByEdition(snapshot.rates, snapshot.auctions)

	editions := make([]schema.Edition, 0, len(snapshot.editions))
	for _, e := range snapshot.editions {
		row := schema.Edition{
			ContractAddress:   key.ContractAddress,
			TokenID:           key.TokenID,
			EditionID:         e.EditionID,
			OwnerAddress:      domain.NormalizeAddress(e.OwnerAddress),
			FreeShipping:      e.FreeShipping,
			LastTransferredAt: e.UpdatedAt,
		}
		if e.StakingContractAddress != nil && *e.StakingContractAddress != "" {
			row.StakingContractAddress = strPtr(domain.NormalizeAddress(*e.StakingContractAddress))
		}

		if sale, ok := sales[e.EditionID]; ok {
			row.SaleID = strPtr(sale.ID)
			row.SalePrice = nullDecimal(sale.Price)
			row.SaleCurrency = strPtr(string(sale.Currency))
			row.LastListedAt = maxTime(row.LastListedAt, sale.CreatedAt)
		}
		if auction, ok := auctions[e.EditionID]; ok {
			endTime := auction.EndTime
			row.AuctionID = strPtr(auction.ID)
			row.AuctionPrice = nullDecimal(auction.Price())
			row.AuctionCurrency = strPtr(string(auction.Currency))
			row.AuctionEndTime = &endTime
			row.LastListedAt = maxTime(row.LastListedAt, auction.CreatedAt)
		}

		row.UpdatedAt = e.UpdatedAt
		if row.LastListedAt != nil && row.LastListedAt.After(row.UpdatedAt) {
			row.UpdatedAt = *row.LastListedAt
		}

		editions = append(editions, row)
	}
	return editions
}

// jsonArray encodes v as a jsonb array, an empty array when v is nil or empty
func jsonArray[T any](v []T) (datatypes.JSON, error) {
	if len(v) == 0 {
		return datatypes.JSON("[]"), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(data), nil
}

// sortedAssets orders media assets by kind then variant so equal asset sets encode equally
func sortedAssets(assets []domain.Asset) []domain.Asset {
	out := append([]domain.Asset(nil), assets...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Variant != out[j].Variant {
			return out[i].Variant < out[j].Variant
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// deriveToken assembles the token aggregate row from the upstream snapshot and its derived edition rows
func deriveToken(key domain.TokenKey, snapshot upstreamSnapshot, editions []schema.Edition, graveyardAddress string) (schema.Token, error) {
	t := snapshot.token

	categories, err := jsonArray(t.Categories)
	if err != nil {
		return schema.Token{}, err
	}
	attributes, err := jsonArray(t.Attributes)
	if err != nil {
		return schema.Token{}, err
	}
	media, err := jsonArray(sortedAssets(snapshot.assets))
	if err != nil {
		return schema.Token{}, err
	}

	token := schema.Token{
		ContractAddress:      key.ContractAddress,
		TokenID:              key.TokenID,
		Name:                 t.Name,
		CreatorAddress:       domain.NormalizeAddress(t.CreatorAddress),
		CreatorName:          t.CreatorName,
		CreatorVerifiedLevel: t.CreatorVerifiedLevel,
		CollectionID:         t.CollectionID,
		Rank:                 t.Rank,
		Categories:           categories,
		Attributes:           attributes,
		Media:                media,
		MintedAt:             t.MintedAt,
		StakingEarnings:      t.StakingEarnings,
		StakingEligible:      t.StakingEligible,
		EditionsCount:        len(editions),
	}
	if t.Score != nil {
		token.Score = nullDecimal(decimal.NewFromFloat(*t.Score))
	}

	graveyard := domain.NormalizeAddress(graveyardAddress)
	for _, e := range editions {
		if e.SaleID != nil || e.AuctionID != nil {
			token.EditionsOnSale++
		}
		if graveyard != "" && e.OwnerAddress == graveyard {
			token.EditionsInGraveyard++
		}
		token.UpdatedAt = maxTime(token.UpdatedAt, e.UpdatedAt)
		token.LastTransferredAt = maxTime(token.LastTransferredAt, e.LastTransferredAt)
		if e.LastListedAt != nil {
			token.LastListedAt = maxTime(token.LastListedAt, *e.LastListedAt)
		}
	}

	sales := saleListings(snapshot.sales)
	if i := pick(snapshot.rates, sales, cheaper); i >= 0 {
		s := snapshot.sales[i]
		token.MinSaleID = strPtr(s.ID)
		token.MinSalePrice = nullDecimal(s.Price)
		token.MinSaleCurrency = strPtr(string(s.Currency))
	}
	if i := pick(snapshot.rates, sales, pricier); i >= 0 {
		s := snapshot.sales[i]
		token.MaxSaleID = strPtr(s.ID)
		token.MaxSalePrice = nullDecimal(s.Price)
		token.MaxSaleCurrency = strPtr(string(s.Currency))
	}
	if i := pick(snapshot.rates, auctionListings(snapshot.auctions), cheaper); i >= 0 {
		a := snapshot.auctions[i]
		endTime := a.EndTime
		token.MinAuctionID = strPtr(a.ID)
		token.MinAuctionPrice = nullDecimal(a.Price())
		token.MinAuctionCurrency = strPtr(string(a.Currency))
		token.MinAuctionEndTime = &endTime
	}
	if o := snapshot.offer; o != nil {
		token.HighestOfferID = strPtr(o.ID)
		token.HighestOfferPrice = nullDecimal(o.Price)
		token.HighestOfferCurrency = strPtr(string(o.Currency))
	}

	return token, nil
}
