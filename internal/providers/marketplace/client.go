// Package marketplace implements the RPC clients of the marketplace domain services.
// Each service is the system of record for its own entities.
package marketplace

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/feral-file/ff-market-sync/internal/adapter"
	"github.com/feral-file/ff-market-sync/internal/domain"
)

// response is the envelope every domain service wraps its results in
type response[T any] struct {
	Result T `json:"result"`
}

// wrapError maps transport errors to domain errors: a 404 becomes domain.ErrNotFound,
// anything else domain.ErrUpstreamUnavailable
func wrapError(op string, err error) error {
	if adapter.IsNotFound(err) {
		return fmt.Errorf("failed to %s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrUpstreamUnavailable, err)
}

func endpoint(baseURL string, segments ...string) string {
	escaped := make([]string, 0, len(segments)+1)
	escaped = append(escaped, strings.TrimSuffix(baseURL, "/"))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	return strings.Join(escaped, "/")
}

func tokenQuery(key domain.TokenKey) url.Values {
	q := url.Values{}
	q.Set("contract_address", key.ContractAddress)
	q.Set("token_id", key.TokenID)
	return q
}
