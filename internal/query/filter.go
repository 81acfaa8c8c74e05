package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/store"
)

const (
	// ownedAlias is the alias of the per-token aggregate of the editions held by the filtered owner
	ownedAlias = "owned"
	// editionStatsAlias is the alias of the per-token aggregate of all editions
	editionStatsAlias = "edition_stats"
)

// Pagination selects one page of results
type Pagination struct {
	Page    int
	PerPage int
}

// Offset returns the number of rows skipped before the page
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Filter holds the conjunctive listing filters. Zero values do not filter.
type Filter struct {
	OnSale    bool
	OnAuction bool
	// AuctionEnded keeps tokens with an ended auction awaiting settlement when true,
	// and tokens with a running auction when false
	AuctionEnded     *bool
	Currencies       []domain.Currency
	MinVerifiedLevel *int
	Categories       []string
	CollectionIDs    []string
	// Text matches the token name, the creator name or the collection name
	Text            string
	CreatorAddress  string
	OwnerAddress    string
	MinRank         *int
	MaxRank         *int
	MinPrice        *decimal.Decimal
	MaxPrice        *decimal.Decimal
	StakingEligible *bool
	Staked          *bool
	// Attributes maps a trait to its accepted values
	Attributes map[string][]string
}

// NeedsRates reports whether evaluating the filter requires conversion rates
func (f Filter) NeedsRates() bool {
	return f.MinPrice != nil || f.MaxPrice != nil
}

func invalidQuery(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidQuery, fmt.Sprintf(format, args...))
}

// Validate checks the request and normalizes its addresses in place
func Validate(page Pagination, filter *Filter, sort SortKey) error {
	if page.Page < 1 {
		return invalidQuery("page must be at least 1")
	}
	if page.PerPage < 1 || page.PerPage > domain.MAX_PER_PAGE {
		return invalidQuery("per page must be between 1 and %d", domain.MAX_PER_PAGE)
	}
	if !sort.Valid() {
		return invalidQuery("unknown sort key %q", sort)
	}
	if sort.NeedsOwner() && filter.OwnerAddress == "" {
		return invalidQuery("sort %q requires an owner filter", sort)
	}

	if filter.CreatorAddress != "" {
		if !domain.ValidAddress(filter.CreatorAddress) {
			return invalidQuery("invalid creator address %q", filter.CreatorAddress)
		}
		filter.CreatorAddress = domain.NormalizeAddress(filter.CreatorAddress)
	}
	if filter.OwnerAddress != "" {
		if !domain.ValidAddress(filter.OwnerAddress) {
			return invalidQuery("invalid owner address %q", filter.OwnerAddress)
		}
		filter.OwnerAddress = domain.NormalizeAddress(filter.OwnerAddress)
	}

	if filter.MinRank != nil && filter.MaxRank != nil && *filter.MinRank > *filter.MaxRank {
		return invalidQuery("min rank is greater than max rank")
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return invalidQuery("min price is greater than max price")
	}
	if filter.MinPrice != nil && filter.MinPrice.IsNegative() {
		return invalidQuery("min price must not be negative")
	}
	if filter.MinVerifiedLevel != nil && (*filter.MinVerifiedLevel < domain.VERIFIED_LEVEL_NONE || *filter.MinVerifiedLevel > domain.VERIFIED_LEVEL_FEATURED) {
		return invalidQuery("verified level must be between %d and %d", domain.VERIFIED_LEVEL_NONE, domain.VERIFIED_LEVEL_FEATURED)
	}

	for _, c := range filter.Currencies {
		if strings.TrimSpace(string(c)) == "" {
			return invalidQuery("empty currency")
		}
	}
	for trait, values := range filter.Attributes {
		if strings.TrimSpace(trait) == "" {
			return invalidQuery("empty attribute trait")
		}
		if len(values) == 0 {
			return invalidQuery("attribute %q without values", trait)
		}
	}
	if n := countAttributeCombinations(filter.Attributes); n > maxAttributeCombinations {
		return invalidQuery("attribute filter expands to more than %d combinations", maxAttributeCombinations)
	}

	return nil
}

// ownedJoin aggregates the editions held by owner per token
func ownedJoin(owner string) store.Condition {
	return store.Condition{
		Clause: "JOIN (SELECT contract_address, token_id," +
			" max(last_listed_at) AS last_listed_at," +
			" max(last_transferred_at) AS last_transferred_at," +
			" bool_or(staking_contract_address IS NOT NULL) AS staked" +
			" FROM editions WHERE owner_address = ? GROUP BY contract_address, token_id) AS " + ownedAlias +
			" ON " + ownedAlias + ".contract_address = tokens.contract_address AND " + ownedAlias + ".token_id = tokens.token_id",
		Params: []any{owner},
	}
}

// editionStatsJoin aggregates the listing and staking state of all editions per token.
// Edition pointers stay set when a listing has no rate, unlike the token min/max columns.
var editionStatsJoin = store.Condition{
	Clause: "LEFT JOIN (SELECT contract_address, token_id," +
		" bool_or(sale_id IS NOT NULL) AS on_sale," +
		" bool_or(auction_id IS NOT NULL) AS on_auction," +
		" bool_or(staking_contract_address IS NOT NULL) AS staked" +
		" FROM editions GROUP BY contract_address, token_id) AS " + editionStatsAlias +
		" ON " + editionStatsAlias + ".contract_address = tokens.contract_address AND " + editionStatsAlias + ".token_id = tokens.token_id",
}

// needsEditionStats reports whether a predicate reads the edition stats aggregate
func (f Filter) needsEditionStats() bool {
	return f.OnSale || f.OnAuction || (f.Staked != nil && f.OwnerAddress == "")
}

func editionStat(name string) Operand {
	return Col("COALESCE(" + editionStatsAlias + "." + name + ", false)")
}

// collectionJoin is always present: visibility, text and verified level filters read the collection
var collectionJoin = store.Condition{Clause: "LEFT JOIN collections ON collections.id = tokens.collection_id"}

const editionOfToken = "editions.contract_address = tokens.contract_address AND editions.token_id = tokens.token_id"

// visibility hides tokens of hidden collections from everyone but admins and the collection creator
func visibility(caller domain.Caller) Predicate {
	if caller.IsAdmin {
		return nil
	}
	or := Or{
		IsNull{Operand: Col("collections.visible")},
		Eq{Operand: Col("collections.visible"), Value: true},
	}
	if caller.Address != "" {
		or = append(or, Eq{Operand: Col("collections.creator_address"), Value: domain.NormalizeAddress(caller.Address)})
	}
	return or
}

// predicates translates a validated filter into predicates
func predicates(filter Filter, rates domain.Rates, now time.Time) And {
	var and And

	if filter.OnSale {
		and = append(and, Eq{Operand: editionStat("on_sale"), Value: true})
	}
	if filter.OnAuction {
		and = append(and, Eq{Operand: editionStat("on_auction"), Value: true})
	}
	if filter.AuctionEnded != nil {
		op := ">"
		if *filter.AuctionEnded {
			op = "<="
		}
		and = append(and, Exists{
			Subquery: "SELECT 1 FROM editions WHERE " + editionOfToken +
				" AND editions.auction_id IS NOT NULL AND editions.auction_end_time " + op + " ?",
			Params: []any{now},
		})
	}
	if len(filter.Currencies) > 0 {
		currencies := make([]string, len(filter.Currencies))
		for i, c := range filter.Currencies {
			currencies[i] = string(c)
		}
		and = append(and, Or{
			In{Operand: Col("tokens.min_sale_currency"), Values: currencies},
			In{Operand: Col("tokens.min_auction_currency"), Values: currencies},
		})
	}
	if filter.MinVerifiedLevel != nil {
		and = append(and, Or{
			Compare{Operand: Col("tokens.creator_verified_level"), Op: ">=", Value: *filter.MinVerifiedLevel},
			Compare{Operand: Col("collections.verified_level"), Op: ">=", Value: *filter.MinVerifiedLevel},
		})
	}
	if len(filter.Categories) > 0 {
		or := make(Or, 0, len(filter.Categories))
		for _, category := range filter.Categories {
			or = append(or, JSONContains{Operand: Col("tokens.categories"), Value: []string{category}})
		}
		and = append(and, or)
	}
	if len(filter.CollectionIDs) > 0 {
		and = append(and, In{Operand: Col("tokens.collection_id"), Values: filter.CollectionIDs})
	}
	if text := strings.TrimSpace(filter.Text); text != "" {
		and = append(and, TextMatch{
			Operands: []Operand{Col("tokens.name"), Col("tokens.creator_name"), Col("collections.name")},
			Text:     text,
		})
	}
	if filter.CreatorAddress != "" {
		and = append(and, Eq{Operand: Col("tokens.creator_address"), Value: filter.CreatorAddress})
	}
	if filter.MinRank != nil || filter.MaxRank != nil {
		and = append(and, Range{Operand: Col("tokens.rank"), Min: intOrNil(filter.MinRank), Max: intOrNil(filter.MaxRank)})
	}
	if filter.NeedsRates() {
		r := Range{Operand: ConvertedPrice(minSalePrice.price, minSalePrice.currency, rates)}
		if filter.MinPrice != nil {
			r.Min = *filter.MinPrice
		}
		if filter.MaxPrice != nil {
			r.Max = *filter.MaxPrice
		}
		and = append(and, r)
	}
	if filter.StakingEligible != nil {
		and = append(and, Eq{Operand: Col("tokens.staking_eligible"), Value: *filter.StakingEligible})
	}
	if filter.Staked != nil {
		if filter.OwnerAddress != "" {
			and = append(and, Eq{Operand: Col(ownedAlias + ".staked"), Value: *filter.Staked})
		} else {
			and = append(and, Eq{Operand: editionStat("staked"), Value: *filter.Staked})
		}
	}
	if combinations := ExpandAttributes(filter.Attributes); len(combinations) > 0 {
		or := make(Or, 0, len(combinations))
		for _, combination := range combinations {
			or = append(or, JSONContains{Operand: Col("tokens.attributes"), Value: combination})
		}
		and = append(and, or)
	}

	return and
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// Compile builds the store query of a validated request
func Compile(page Pagination, filter Filter, sort SortKey, caller domain.Caller, rates domain.Rates, now time.Time) (store.TokenQuery, error) {
	q := store.TokenQuery{
		Joins:  []store.Condition{collectionJoin},
		Limit:  page.PerPage,
		Offset: page.Offset(),
	}
	if filter.OwnerAddress != "" {
		q.Joins = append(q.Joins, ownedJoin(filter.OwnerAddress))
	}
	if filter.needsEditionStats() {
		q.Joins = append(q.Joins, editionStatsJoin)
	}

	and := predicates(filter, rates, now)
	if v := visibility(caller); v != nil {
		and = append(and, v)
	}
	for _, p := range and {
		c, err := p.Compile()
		if err != nil {
			return store.TokenQuery{}, fmt.Errorf("%w: %v", domain.ErrInvalidQuery, err)
		}
		q.Where = append(q.Where, c)
	}

	order, err := orderBy(sort, rates)
	if err != nil {
		return store.TokenQuery{}, err
	}
	q.Order = order

	return q, nil
}
