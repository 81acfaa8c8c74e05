package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operation is the kind of a change notification
type Operation string

const (
	OperationUpdateToken      Operation = "update_token"
	OperationDeleteToken      Operation = "delete_token"
	OperationUpdateSale       Operation = "update_sale"
	OperationUpdateAuction    Operation = "update_auction"
	OperationUpdateOffer      Operation = "update_offer"
	OperationUpdateAsset      Operation = "update_asset"
	OperationUpdateCollection Operation = "update_collection"
	OperationUpdateUser       Operation = "update_user"
)

// Valid checks if the operation is one of the known notification kinds
func (o Operation) Valid() bool {
	switch o {
	case OperationUpdateToken,
		OperationDeleteToken,
		OperationUpdateSale,
		OperationUpdateAuction,
		OperationUpdateOffer,
		OperationUpdateAsset,
		OperationUpdateCollection,
		OperationUpdateUser:
		return true
	default:
		return false
	}
}

// Notification is a change notification emitted by a domain service on mutation
type Notification struct {
	Operation Operation       `json:"operation"`
	Key       string          `json:"key"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Validate checks the envelope shape; payload decoding happens per operation
func (n Notification) Validate() error {
	if !n.Operation.Valid() {
		return fmt.Errorf("%w: unknown operation %q", ErrInvalidNotification, n.Operation)
	}
	if strings.TrimSpace(n.Key) == "" {
		return fmt.Errorf("%w: empty key for %s", ErrInvalidNotification, n.Operation)
	}
	switch n.Operation {
	case OperationUpdateUser, OperationUpdateOffer, OperationUpdateAsset:
		if len(n.Payload) == 0 {
			return fmt.Errorf("%w: %s requires a payload", ErrInvalidNotification, n.Operation)
		}
	}
	return nil
}

// DecodePayload decodes the notification payload into v
func (n Notification) DecodePayload(v any) error {
	if err := json.Unmarshal(n.Payload, v); err != nil {
		return fmt.Errorf("%w: failed to decode %s payload: %v", ErrInvalidNotification, n.Operation, err)
	}
	return nil
}

// AssetEntity discriminates what an updated asset belongs to
type AssetEntity string

const (
	AssetEntityToken      AssetEntity = "token"
	AssetEntityUserAvatar AssetEntity = "user_avatar"
	AssetEntityUserBanner AssetEntity = "user_banner"
)

// AssetChange is the payload of an update_asset notification
type AssetChange struct {
	Entity       AssetEntity `json:"entity"`
	TokenKey     string      `json:"token_key,omitempty"`
	OwnerAddress string      `json:"owner_address,omitempty"`
}

// CollectionChange is the optional payload of an update_collection notification
type CollectionChange struct {
	Deleted bool `json:"deleted"`
}
