package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEditionRef(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		wantKey     TokenKey
		wantEdition *string
	}{
		{
			name:    "token key",
			input:   "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:1234",
			wantKey: TokenKey{ContractAddress: "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB", TokenID: "1234"},
		},
		{
			name:        "edition key",
			input:       "KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton:7:3",
			wantKey:     TokenKey{ContractAddress: "KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton", TokenID: "7"},
			wantEdition: strPtr("3"),
		},
		{
			name:        "missing token id",
			input:       "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb",
			expectError: true,
		},
		{
			name:        "non numeric token id",
			input:       "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:abc",
			expectError: true,
		},
		{
			name:        "empty edition",
			input:       "0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:1:",
			expectError: true,
		},
		{
			name:        "too many parts",
			input:       "a:1:2:3",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseEditionRef(tt.input)
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidTokenKey)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, ref.TokenKey)
			assert.Equal(t, tt.wantEdition, ref.EditionID)
		})
	}
}

func TestParseTokenKeyRejectsEdition(t *testing.T) {
	_, err := ParseTokenKey("0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:1:2")
	assert.ErrorIs(t, err, ErrInvalidTokenKey)

	key, err := ParseTokenKey("0xb47e3cd837ddf8e4c57f05d70ab865de6e193bbb:1")
	require.NoError(t, err)
	assert.Equal(t, "0xb47e3cd837dDF8e4c57F05d70Ab865de6e193BBB:1", key.String())
}

func TestNormalizeAddress(t *testing.T) {
	assert.Equal(t, "0x000000000000000000000000000000000000dEaD", NormalizeAddress(" 0x000000000000000000000000000000000000dead "))
	assert.Equal(t, "tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb", NormalizeAddress("tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"))
}

func TestValidAddress(t *testing.T) {
	assert.True(t, ValidAddress("0x000000000000000000000000000000000000dEaD"))
	assert.True(t, ValidAddress("tz1VSUr8wwNhLAzempoch5d6hLRiTh8Cjcjb"))
	assert.True(t, ValidAddress("KT1RJ6PbjHpwc3M5rw5s2Nbmefwbuwbdxton"))
	assert.False(t, ValidAddress("0x1234"))
	assert.False(t, ValidAddress("not-an-address"))
}

func TestRatesConvert(t *testing.T) {
	rates := Rates{
		"ETH":  decimal.NewFromInt(3),
		"USDC": decimal.NewFromInt(1),
	}

	converted, ok := rates.Convert(decimal.NewFromInt(50), "ETH")
	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(150).Equal(converted))

	_, ok = rates.Convert(decimal.NewFromInt(50), "XTZ")
	assert.False(t, ok)

	assert.Equal(t, []Currency{"ETH", "USDC"}, rates.Currencies())
}

func TestAuctionPrice(t *testing.T) {
	a := Auction{ReservePrice: decimal.NewFromInt(10), HighestBid: decimal.Zero}
	assert.True(t, decimal.NewFromInt(10).Equal(a.Price()))

	a.HighestBid = decimal.NewFromInt(12)
	assert.True(t, decimal.NewFromInt(12).Equal(a.Price()))
}

func TestNotificationValidate(t *testing.T) {
	tests := []struct {
		name         string
		notification Notification
		expectError  bool
	}{
		{
			name:         "update token",
			notification: Notification{Operation: OperationUpdateToken, Key: "0xabc:1"},
		},
		{
			name:         "unknown operation",
			notification: Notification{Operation: "rename_token", Key: "0xabc:1"},
			expectError:  true,
		},
		{
			name:         "empty key",
			notification: Notification{Operation: OperationUpdateSale, Key: " "},
			expectError:  true,
		},
		{
			name:         "user without payload",
			notification: Notification{Operation: OperationUpdateUser, Key: "0xabc"},
			expectError:  true,
		},
		{
			name:         "user with payload",
			notification: Notification{Operation: OperationUpdateUser, Key: "0xabc", Payload: json.RawMessage(`{"address":"0xabc"}`)},
		},
		{
			name:         "collection without payload",
			notification: Notification{Operation: OperationUpdateCollection, Key: "col-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.notification.Validate()
			if tt.expectError {
				assert.ErrorIs(t, err, ErrInvalidNotification)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNotificationDecodePayload(t *testing.T) {
	n := Notification{
		Operation: OperationUpdateAsset,
		Key:       "asset-1",
		Payload:   json.RawMessage(`{"entity":"user_avatar","owner_address":"0xabc"}`),
	}

	var change AssetChange
	require.NoError(t, n.DecodePayload(&change))
	assert.Equal(t, AssetEntityUserAvatar, change.Entity)
	assert.Equal(t, "0xabc", change.OwnerAddress)

	n.Payload = json.RawMessage(`{"entity":`)
	assert.ErrorIs(t, n.DecodePayload(&change), ErrInvalidNotification)
}

func strPtr(s string) *string {
	return &s
}
