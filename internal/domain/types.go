package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// TokenKey identifies a token aggregate: one (contract, token id) pair
type TokenKey struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
}

var tokenIDPattern = regexp.MustCompile(`^[0-9]+$`)

// NewTokenKey creates a token key with a normalized contract address
func NewTokenKey(contractAddress, tokenID string) TokenKey {
	return TokenKey{
		ContractAddress: NormalizeAddress(contractAddress),
		TokenID:         strings.TrimSpace(tokenID),
	}
}

// String returns the key in format contract:tokenId
func (k TokenKey) String() string {
	return k.ContractAddress + ":" + k.TokenID
}

// Valid checks if the key has a contract address and a numeric token id
func (k TokenKey) Valid() bool {
	return k.ContractAddress != "" && tokenIDPattern.MatchString(k.TokenID)
}

// EditionRef is a token key optionally narrowed down to one edition
type EditionRef struct {
	TokenKey
	EditionID *string
}

// ParseTokenKey parses a key in format contract:tokenId
func ParseTokenKey(s string) (TokenKey, error) {
	ref, err := ParseEditionRef(s)
	if err != nil {
		return TokenKey{}, err
	}
	if ref.EditionID != nil {
		return TokenKey{}, fmt.Errorf("%w: unexpected edition in %q", ErrInvalidTokenKey, s)
	}
	return ref.TokenKey, nil
}

// ParseEditionRef parses a key in format contract:tokenId or contract:tokenId:editionId
func ParseEditionRef(s string) (EditionRef, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return EditionRef{}, fmt.Errorf("%w: %q", ErrInvalidTokenKey, s)
	}

	ref := EditionRef{TokenKey: NewTokenKey(parts[0], parts[1])}
	if !ref.Valid() {
		return EditionRef{}, fmt.Errorf("%w: %q", ErrInvalidTokenKey, s)
	}

	if len(parts) == 3 {
		editionID := strings.TrimSpace(parts[2])
		if editionID == "" {
			return EditionRef{}, fmt.Errorf("%w: empty edition in %q", ErrInvalidTokenKey, s)
		}
		ref.EditionID = &editionID
	}

	return ref, nil
}

// NormalizeAddresses normalizes the addresses in place
func NormalizeAddresses(addresses []string) []string {
	for i, address := range addresses {
		addresses[i] = NormalizeAddress(address)
	}
	return addresses
}

// NormalizeAddress normalizes an address to the format used by the blockchain
func NormalizeAddress(address string) string {
	address = strings.TrimSpace(address)
	if strings.HasPrefix(address, "0x") {
		return common.HexToAddress(address).String()
	}
	return address
}

// ValidAddress checks if the address is a well-formed ethereum address or a tezos-like base58 address
func ValidAddress(address string) bool {
	if strings.HasPrefix(address, "0x") {
		return common.IsHexAddress(address)
	}
	return tezosAddressPattern.MatchString(address)
}

var tezosAddressPattern = regexp.MustCompile(`^(tz[1-4]|KT1)[1-9A-HJ-NP-Za-km-z]{33}$`)

// Caller is the identity of a query caller
type Caller struct {
	Address string
	IsAdmin bool
}
