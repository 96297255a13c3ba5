package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// XDM field names.
const (
	KeyIdentityMap        = "identityMap"
	KeyID                 = "id"
	KeyAuthenticatedState = "authenticatedState"
	KeyPrimary            = "primary"
)

// ErrInvalidArgument is returned when an item is built from an id that is nil or not a string.
var ErrInvalidArgument = errors.New("identity: invalid argument")

// Item is a single identifier in a namespace.
//
// Items are values: mutate by building a replacement. Equality is by ID only, see Equal.
type Item struct {
	// ID is the identifier value. It may be empty for backward compatibility.
	ID string

	// AuthenticatedState defaults to Ambiguous.
	AuthenticatedState AuthenticatedState

	// Primary marks the identifier as the primary one for the event.
	Primary bool
}

// NewItem builds an item. An unknown or empty state is stored as Ambiguous.
// An empty id is accepted.
func NewItem(id string, state AuthenticatedState, primary bool) Item {
	return Item{
		ID:                 id,
		AuthenticatedState: state.normalize(),
		Primary:            primary,
	}
}

// NewItemFromValue builds an item from an untyped id, as received from a host API.
// It fails with ErrInvalidArgument when id is nil or not a string.
func NewItemFromValue(id any, state AuthenticatedState, primary bool) (Item, error) {
	s, ok := id.(string)
	if !ok {
		return Item{}, fmt.Errorf("%w: item id must be a string, got %T", ErrInvalidArgument, id)
	}
	return NewItem(s, state, primary), nil
}

// Equal reports whether both items carry the same id.
// AuthenticatedState and Primary are not compared.
func (i Item) Equal(other Item) bool {
	return i.ID == other.ID
}

// ToXDM returns the item as an XDM map. All three keys are always present.
func (i Item) ToXDM() map[string]any {
	return map[string]any{
		KeyID:                 i.ID,
		KeyAuthenticatedState: i.AuthenticatedState.String(),
		KeyPrimary:            i.Primary,
	}
}

// ItemFromXDM parses an item from XDM data. It returns false when data is nil or the id
// is missing, null or not a string. A missing or unknown state defaults to Ambiguous and
// a missing or malformed primary flag to false. An empty id is parsed.
func ItemFromXDM(data map[string]any) (Item, bool) {
	if data == nil {
		return Item{}, false
	}

	id, ok := data[KeyID].(string)
	if !ok {
		return Item{}, false
	}

	state := Ambiguous
	if s, ok := data[KeyAuthenticatedState].(string); ok {
		state, _ = ParseAuthenticatedState(s)
	}

	return NewItem(id, state, parsePrimary(data[KeyPrimary])), true
}

// parsePrimary accepts a boolean or the strings "true" and "false" in any case.
// Anything else is false.
func parsePrimary(v any) bool {
	switch p := v.(type) {
	case bool:
		return p
	case string:
		return strings.EqualFold(p, "true")
	default:
		return false
	}
}

type itemJSON struct {
	ID                 string `json:"id"`
	AuthenticatedState string `json:"authenticatedState"`
	Primary            bool   `json:"primary"`
}

// MarshalJSON encodes the item with keys in id, authenticatedState, primary order.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ID:                 i.ID,
		AuthenticatedState: i.AuthenticatedState.String(),
		Primary:            i.Primary,
	})
}

// UnmarshalJSON decodes an item using the same rules as ItemFromXDM.
func (i *Item) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	item, ok := ItemFromXDM(raw)
	if !ok {
		return fmt.Errorf("%w: item has no string id", ErrInvalidArgument)
	}
	*i = item
	return nil
}
