package token

import (
	"context"

	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/users"
)

// CacheKey identifies cache entries for one acquisition.
type CacheKey struct {
	Authority   string
	Resource    string
	ClientID    string
	SubjectType users.IdentifierType
	SubjectID   string
}

// NewCacheKey builds a key from a canonical authority, so a key never exists for an
// authority that was not canonicalized.
func NewCacheKey(a *authority.Authority, resource, clientID string, subject users.Identifier) CacheKey {
	key := CacheKey{
		Authority: a.URI,
		Resource:  resource,
		ClientID:  clientID,
	}
	if subject.IsAnyUser() {
		key.SubjectType = users.Any
		return key
	}
	key.SubjectType = subject.Type
	key.SubjectID = subject.ID
	return key
}

// Subject rebuilds the identifier the key was created from.
func (k CacheKey) Subject() users.Identifier {
	return users.Identifier{ID: k.SubjectID, Type: k.SubjectType}
}

// NotificationArgs is passed to the cache's before and after access notifications.
type NotificationArgs struct {
	Resource      string
	ClientID      string
	UniqueID      string
	DisplayableID string
}

// CacheQuery is a lookup request.
type CacheQuery struct {
	Key CacheKey

	// ExtendedLifetimeEnabled allows an expired access token that is still inside its extended
	// window to be returned, flagged with Result.ExtendedLifetime.
	ExtendedLifetimeEnabled bool
}

// Cache is the caller owned token store. Implementations do their own locking.
//
// Lookup returns (nil, nil) on a miss. A hit whose access token has expired may be returned with
// only the refresh token populated.
type Cache interface {
	BeforeAccess(ctx context.Context, args NotificationArgs)
	AfterAccess(ctx context.Context, args NotificationArgs)
	Lookup(ctx context.Context, query CacheQuery) (*Result, error)
	Store(ctx context.Context, key CacheKey, result *Result) error
}
