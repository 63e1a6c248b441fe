package token

import (
	"time"

	xoauth2 "golang.org/x/oauth2"
)

// UserInfo is the identity extracted from the id_token.
type UserInfo struct {
	UniqueID         string `json:"unique_id,omitempty"`      // oid, else sub
	DisplayableID    string `json:"displayable_id,omitempty"` // upn, else email, else unique_name
	GivenName        string `json:"given_name,omitempty"`
	FamilyName       string `json:"family_name,omitempty"`
	IdentityProvider string `json:"identity_provider,omitempty"` // idp, else iss
}

// Result is the outcome of a successful acquisition.
type Result struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	TokenType    string `json:"token_type,omitempty"`

	ExpiresOn         time.Time `json:"expires_on"`
	ExtendedExpiresOn time.Time `json:"extended_expires_on"`

	// ExtendedLifetime is set when the access token is past ExpiresOn but still inside the
	// extended window. Such a token is only usable while the service is unavailable.
	ExtendedLifetime bool `json:"extended_lifetime,omitempty"`

	TenantID string    `json:"tenant_id,omitempty"`
	UserInfo *UserInfo `json:"user_info,omitempty"`
	IDToken  string    `json:"-"`

	// Authority is the canonical authority the token is valid for.
	Authority string `json:"authority,omitempty"`
	Resource  string `json:"resource,omitempty"`
}

func (r *Result) HasAccessToken() bool {
	return r != nil && r.AccessToken != ""
}

func (r *Result) HasRefreshToken() bool {
	return r != nil && r.RefreshToken != ""
}

// Clone returns a deep copy, so cache entries are never shared with callers.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	if r.UserInfo != nil {
		ui := *r.UserInfo
		c.UserInfo = &ui
	}
	return &c
}

// UniqueID returns the user's unique id, or "" when the result carries no identity.
func (r *Result) UniqueID() string {
	if r == nil || r.UserInfo == nil {
		return ""
	}
	return r.UserInfo.UniqueID
}

// DisplayableID returns the user's sign-in name, or "" when the result carries no identity.
func (r *Result) DisplayableID() string {
	if r == nil || r.UserInfo == nil {
		return ""
	}
	return r.UserInfo.DisplayableID
}

// OAuth2Token adapts the result to golang.org/x/oauth2.
func (r *Result) OAuth2Token() *xoauth2.Token {
	t := &xoauth2.Token{
		AccessToken:  r.AccessToken,
		TokenType:    r.TokenType,
		RefreshToken: r.RefreshToken,
		Expiry:       r.ExpiresOn,
	}
	extra := map[string]any{
		"resource":  r.Resource,
		"authority": r.Authority,
	}
	if r.IDToken != "" {
		extra["id_token"] = r.IDToken
	}
	return t.WithExtra(extra)
}
