package auth

import (
	"strings"

	"github.com/jrsteele09/go-auth-client/clients"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
)

// Request describes one token acquisition. It is copied when an acquisition starts and never
// modified afterwards.
type Request struct {
	// Authority is the token issuer, e.g. "https://login.microsoftonline.com/common".
	Authority string

	// Resource identifies the API the token is for. It may only be empty when ResourceOptional is set.
	Resource         string
	ResourceOptional bool

	Client clients.Credential

	// User is the subject the token must be issued for. The zero value means any user.
	User users.Identifier

	// Cache is the caller owned token store; nil disables caching for this request.
	Cache          token.Cache
	SkipCacheRead  bool
	SkipCacheWrite bool

	// ExtendedLifetimeEnabled lets an expired token inside its extended window be used when the
	// service is unavailable.
	ExtendedLifetimeEnabled bool

	// CorrelationID is sent with every request of the acquisition. Generated when empty.
	CorrelationID string

	// RedirectURI is used by interactive acquisitions. The platform default applies when empty.
	RedirectURI string

	// ExtraQueryParameters are appended to the authorization request, "k1=v1&k2=v2".
	ExtraQueryParameters string

	// Claims is a claims challenge. A request carrying one never reads the cache.
	Claims string

	// ForcePrompt makes the interactive sign-in ignore existing sessions.
	ForcePrompt bool
}

func (r Request) validate() error {
	if err := r.Client.Validate(); err != nil {
		return oauthmodel.WrapError(oauthmodel.CodeInvalidRequest, "invalid client", err)
	}
	if strings.TrimSpace(r.Resource) == "" && !r.ResourceOptional {
		return oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "resource is required")
	}
	if !r.User.IsAnyUser() && strings.TrimSpace(r.User.ID) == "" {
		return oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "user identifier has no id")
	}
	return nil
}

// readsCache reports whether the cache is consulted before any network call.
func (r Request) readsCache() bool {
	return r.Cache != nil && !r.SkipCacheRead && r.Claims == ""
}

func (r Request) writesCache() bool {
	return r.Cache != nil && !r.SkipCacheWrite
}
