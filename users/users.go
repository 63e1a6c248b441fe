package users

import "strings"

// IdentifierType says how strongly an acquisition is bound to a particular user.
type IdentifierType string

const (
	// UniqueID is the immutable object id of the user; the returned token must carry it.
	UniqueID IdentifierType = "unique_id"
	// OptionalDisplayableID is a sign-in name used as a hint only.
	OptionalDisplayableID IdentifierType = "optional_displayable_id"
	// RequiredDisplayableID is a sign-in name the returned token must match.
	RequiredDisplayableID IdentifierType = "required_displayable_id"
	// Any accepts whichever user signs in.
	Any IdentifierType = "any"
)

// Identifier is the target subject of an acquisition.
type Identifier struct {
	ID   string         `json:"id,omitempty"`
	Type IdentifierType `json:"type"`
}

// AnyUser matches whoever signs in.
var AnyUser = Identifier{Type: Any}

func NewUniqueID(id string) Identifier {
	return Identifier{ID: id, Type: UniqueID}
}

func NewDisplayableID(id string, required bool) Identifier {
	if required {
		return Identifier{ID: id, Type: RequiredDisplayableID}
	}
	return Identifier{ID: id, Type: OptionalDisplayableID}
}

// IsAnyUser returns true for the any-user identifier, and for the zero value.
func (u Identifier) IsAnyUser() bool {
	return u.Type == Any || u.Type == ""
}

func (u Identifier) IsDisplayable() bool {
	return u.Type == OptionalDisplayableID || u.Type == RequiredDisplayableID
}

// LoginHint is the value sent as login_hint, empty unless the identifier is a displayable id.
func (u Identifier) LoginHint() string {
	if !u.IsDisplayable() {
		return ""
	}
	return u.ID
}

// MustMatch reports whether the identity in a returned token has to be checked against this identifier.
func (u Identifier) MustMatch() bool {
	return (u.Type == UniqueID || u.Type == RequiredDisplayableID) && u.ID != ""
}

// Matches compares this identifier with the ids returned by the service. Displayable ids compare
// case-insensitively.
func (u Identifier) Matches(uniqueID, displayableID string) bool {
	switch u.Type {
	case UniqueID:
		return u.ID == uniqueID
	case RequiredDisplayableID:
		return strings.EqualFold(u.ID, displayableID)
	}
	return true
}

// Returned picks which returned id to report when Matches fails.
func (u Identifier) Returned(uniqueID, displayableID string) string {
	if u.Type == UniqueID {
		return uniqueID
	}
	return displayableID
}

func (u Identifier) String() string {
	if u.IsAnyUser() {
		return string(Any)
	}
	return string(u.Type) + ":" + u.ID
}
