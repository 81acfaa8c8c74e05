package query

import (
	"fmt"
	"strings"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/store"
)

// SortKey names a listing order
type SortKey string

const (
	SortNewest                SortKey = "newest"
	SortOldest                SortKey = "oldest"
	SortRecentlyListed        SortKey = "recently_listed"
	SortRecentlyUpdated       SortKey = "recently_updated"
	SortRecentlyTransferred   SortKey = "recently_transferred"
	SortPriceAsc              SortKey = "price_asc"
	SortPriceDesc             SortKey = "price_desc"
	SortAuctionPriceAsc       SortKey = "auction_price_asc"
	SortAuctionPriceDesc      SortKey = "auction_price_desc"
	SortHighestOffer          SortKey = "highest_offer"
	SortRank                  SortKey = "rank"
	SortScore                 SortKey = "score"
	SortEndingSoon            SortKey = "ending_soon"
	SortName                  SortKey = "name"
	SortOwnerRecentlyReceived SortKey = "owner_recently_received"
	SortOwnerRecentlyListed   SortKey = "owner_recently_listed"
)

// DefaultSort is used when no sort key is given
const DefaultSort = SortNewest

type priceColumns struct {
	price    string
	currency string
}

var (
	minSalePrice    = priceColumns{price: "tokens.min_sale_price", currency: "tokens.min_sale_currency"}
	maxSalePrice    = priceColumns{price: "tokens.max_sale_price", currency: "tokens.max_sale_currency"}
	minAuctionPrice = priceColumns{price: "tokens.min_auction_price", currency: "tokens.min_auction_currency"}
	highestOffer    = priceColumns{price: "tokens.highest_offer_price", currency: "tokens.highest_offer_currency"}
)

type sortSpec struct {
	// column is a plain column; price sorts use priceColumns instead
	column    string
	price     *priceColumns
	desc      bool
	needOwner bool
}

var sortSpecs = map[SortKey]sortSpec{
	SortNewest:                {column: "tokens.minted_at", desc: true},
	SortOldest:                {column: "tokens.minted_at"},
	SortRecentlyListed:        {column: "tokens.last_listed_at", desc: true},
	SortRecentlyUpdated:       {column: "tokens.updated_at", desc: true},
	SortRecentlyTransferred:   {column: "tokens.last_transferred_at", desc: true},
	SortPriceAsc:              {price: &minSalePrice},
	SortPriceDesc:             {price: &maxSalePrice, desc: true},
	SortAuctionPriceAsc:       {price: &minAuctionPrice},
	SortAuctionPriceDesc:      {price: &minAuctionPrice, desc: true},
	SortHighestOffer:          {price: &highestOffer, desc: true},
	SortRank:                  {column: "tokens.rank"},
	SortScore:                 {column: "tokens.score", desc: true},
	SortEndingSoon:            {column: "tokens.min_auction_end_time"},
	SortName:                  {column: "tokens.name"},
	SortOwnerRecentlyReceived: {column: ownedAlias + ".last_transferred_at", desc: true, needOwner: true},
	SortOwnerRecentlyListed:   {column: ownedAlias + ".last_listed_at", desc: true, needOwner: true},
}

// tieBreak is appended to every order so that rows with equal sort values keep a total order
const tieBreak = "tokens.contract_address ASC, tokens.token_id ASC"

// Valid checks if the sort key is known
func (k SortKey) Valid() bool {
	_, ok := sortSpecs[k]
	return ok
}

// NeedsRates reports whether sorting by the key requires conversion rates
func (k SortKey) NeedsRates() bool {
	return sortSpecs[k].price != nil
}

// NeedsOwner reports whether the key sorts on the owner's editions and requires an owner filter
func (k SortKey) NeedsOwner() bool {
	return sortSpecs[k].needOwner
}

// ConvertedPrice returns the expression converting a stored price into the common unit:
// CASE currency WHEN c THEN price * rate ... END, NULL for currencies without a rate
func ConvertedPrice(price, currency string, rates domain.Rates) Operand {
	currencies := rates.Currencies()
	if len(currencies) == 0 {
		return Operand{SQL: "NULL::numeric"}
	}

	var sb strings.Builder
	params := make([]any, 0, 2*len(currencies))
	sb.WriteString("CASE ")
	sb.WriteString(currency)
	for _, c := range currencies {
		sb.WriteString(" WHEN ? THEN ")
		sb.WriteString(price)
		sb.WriteString(" * ?::numeric")
		params = append(params, string(c), rates[c])
	}
	sb.WriteString(" END")
	return Operand{SQL: sb.String(), Params: params}
}

// orderBy compiles the ORDER BY terms of a sort key, tie-break included
func orderBy(key SortKey, rates domain.Rates) ([]store.Condition, error) {
	spec, ok := sortSpecs[key]
	if !ok {
		return nil, fmt.Errorf("%w: unknown sort key %q", domain.ErrInvalidQuery, key)
	}

	direction := "ASC"
	if spec.desc {
		direction = "DESC"
	}

	operand := Col(spec.column)
	if spec.price != nil {
		operand = ConvertedPrice(spec.price.price, spec.price.currency, rates)
	}

	return []store.Condition{
		{Clause: fmt.Sprintf("%s %s NULLS LAST", operand.SQL, direction), Params: operand.Params},
		{Clause: tieBreak},
	}, nil
}
