package token

import (
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// IDTokenClaims are the identity claims read from an id_token.
type IDTokenClaims struct {
	ObjectID         string `json:"oid,omitempty"`
	UPN              string `json:"upn,omitempty"`
	Email            string `json:"email,omitempty"`
	UniqueName       string `json:"unique_name,omitempty"`
	GivenName        string `json:"given_name,omitempty"`
	FamilyName       string `json:"family_name,omitempty"`
	TenantID         string `json:"tid,omitempty"`
	IdentityProvider string `json:"idp,omitempty"`
	jwtlib.RegisteredClaims
}

// ParseIDToken extracts the claims without verifying the signature. The token arrived over the
// TLS channel of the token endpoint response and is used for identity display and matching only.
func ParseIDToken(raw string) (*IDTokenClaims, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("[ParseIDToken] empty id_token")
	}
	claims := &IDTokenClaims{}
	if _, _, err := jwtlib.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, "[ParseIDToken] malformed id_token")
	}
	return claims, nil
}

// UserInfo derives the user's identity from the claims.
func (c *IDTokenClaims) UserInfo() *UserInfo {
	ui := &UserInfo{
		UniqueID:         firstNonEmpty(c.ObjectID, c.Subject),
		DisplayableID:    firstNonEmpty(c.UPN, c.Email, c.UniqueName),
		GivenName:        c.GivenName,
		FamilyName:       c.FamilyName,
		IdentityProvider: firstNonEmpty(c.IdentityProvider, c.Issuer),
	}
	return ui
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
