package rest

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/feral-file/ff-market-sync/internal/domain"
	"github.com/feral-file/ff-market-sync/internal/query"
)

// ListTokensQueryParams holds query parameters for GET /tokens.
// List parameters accept both repeated keys and comma separated values.
type ListTokensQueryParams struct {
	// Pagination
	Page    int  `form:"page,default=1"`
	PerPage *int `form:"per_page"`

	Sort string `form:"sort"`

	// Filters
	OnSale           bool     `form:"on_sale"`
	OnAuction        bool     `form:"on_auction"`
	AuctionEnded     *bool    `form:"auction_ended"`
	Currencies       []string `form:"currency"`
	MinVerifiedLevel *int     `form:"min_verified_level"`
	Categories       []string `form:"category"`
	CollectionIDs    []string `form:"collection_id"`
	Text             string   `form:"q"`
	Creator          string   `form:"creator"`
	Owner            string   `form:"owner"`
	MinRank          *int     `form:"min_rank"`
	MaxRank          *int     `form:"max_rank"`
	MinPrice         string   `form:"min_price"`
	MaxPrice         string   `form:"max_price"`
	StakingEligible  *bool    `form:"staking_eligible"`
	Staked           *bool    `form:"staked"`
	// Attributes are trait:value pairs, values of the same trait are alternatives
	Attributes []string `form:"attribute"`
}

// ParseListTokensQuery parses query parameters for GET /tokens
func ParseListTokensQuery(c *gin.Context) (*ListTokensQueryParams, error) {
	var params ListTokensQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	params.Currencies = splitValues(params.Currencies)
	params.Categories = splitValues(params.Categories)
	params.CollectionIDs = splitValues(params.CollectionIDs)
	params.Text = strings.TrimSpace(params.Text)
	params.Creator = strings.TrimSpace(params.Creator)
	params.Owner = strings.TrimSpace(params.Owner)

	return &params, nil
}

// Pagination returns the requested page, defaulting the page size
func (p *ListTokensQueryParams) Pagination() query.Pagination {
	perPage := domain.DEFAULT_PER_PAGE
	if p.PerPage != nil {
		perPage = *p.PerPage
	}
	return query.Pagination{Page: p.Page, PerPage: perPage}
}

// SortKey returns the requested sort, empty selects the default
func (p *ListTokensQueryParams) SortKey() query.SortKey {
	return query.SortKey(strings.ToLower(strings.TrimSpace(p.Sort)))
}

// Filter converts the parameters to a query filter
func (p *ListTokensQueryParams) Filter() (query.Filter, error) {
	filter := query.Filter{
		OnSale:           p.OnSale,
		OnAuction:        p.OnAuction,
		AuctionEnded:     p.AuctionEnded,
		MinVerifiedLevel: p.MinVerifiedLevel,
		Categories:       p.Categories,
		CollectionIDs:    p.CollectionIDs,
		Text:             p.Text,
		CreatorAddress:   p.Creator,
		OwnerAddress:     p.Owner,
		MinRank:          p.MinRank,
		MaxRank:          p.MaxRank,
		StakingEligible:  p.StakingEligible,
		Staked:           p.Staked,
	}

	for _, c := range p.Currencies {
		filter.Currencies = append(filter.Currencies, domain.Currency(strings.ToUpper(c)))
	}

	var err error
	if filter.MinPrice, err = parsePrice("min_price", p.MinPrice); err != nil {
		return query.Filter{}, err
	}
	if filter.MaxPrice, err = parsePrice("max_price", p.MaxPrice); err != nil {
		return query.Filter{}, err
	}

	if len(p.Attributes) > 0 {
		filter.Attributes = make(map[string][]string)
		for _, raw := range p.Attributes {
			trait, value, ok := strings.Cut(raw, ":")
			trait = strings.TrimSpace(trait)
			if !ok || trait == "" {
				return query.Filter{}, fmt.Errorf("attribute %q must be in the form trait:value", raw)
			}
			filter.Attributes[trait] = append(filter.Attributes[trait], strings.TrimSpace(value))
		}
	}

	return filter, nil
}

func parsePrice(name, raw string) (*decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be a decimal number", name)
	}
	return &d, nil
}

// splitValues flattens comma separated values and drops empty entries
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
