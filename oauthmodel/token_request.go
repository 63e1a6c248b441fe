package oauthmodel

import (
	"net/url"

	"github.com/jrsteele09/go-auth-client/oauth2"
)

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the form body sent to the authority's /oauth2/token endpoint.
// Supports the two grant types the client drives: authorization_code and refresh_token.
type TokenRequest struct {
	// GrantType selects which of the grant specific fields below are sent.
	// Required: Yes
	GrantType oauth2.GrantType

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all grant types)
	// Example: "9ba1a5c7-f17a-4de9-a1f1-6178c8d51223"
	ClientID string

	// ClientSecret is the secret credential for confidential clients.
	// Required: Yes for confidential clients, No for public clients
	// Security: Never log or expose this value
	ClientSecret string

	// Resource identifies the API the token is requested for.
	// Required: No (omitted when the caller marked the resource optional)
	Resource string

	// Code is the authorization code received from the authorization endpoint.
	// Required: Yes (only for authorization_code grant)
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string

	// RedirectURI must equal the redirect_uri sent on the authorization request.
	// Required: Yes (only for authorization_code grant)
	RedirectURI string

	// CodeVerifier is the PKCE code verifier that matches the code_challenge.
	// Required: Yes (only for authorization_code grant)
	// Example: "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	CodeVerifier string

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token grant)
	// Behavior: The server may omit a new one; the caller then keeps this value
	RefreshToken string

	// Claims forwards a claims challenge to the token endpoint.
	Claims string

	// CorrelationID is sent as the client-request-id header, not in the body.
	CorrelationID string
}

// Form renders the request body. Fields irrelevant to the grant are never sent.
func (r TokenRequest) Form() url.Values {
	form := url.Values{}
	form.Set(oauth2.ParamGrantType, string(r.GrantType))
	form.Set(oauth2.ParamClientID, r.ClientID)
	if r.ClientSecret != "" {
		form.Set(oauth2.ParamClientSecret, r.ClientSecret)
	}
	if r.Resource != "" {
		form.Set(oauth2.ParamResource, r.Resource)
	}
	if r.Claims != "" {
		form.Set(oauth2.ParamClaims, r.Claims)
	}

	switch r.GrantType {
	case oauth2.AuthorizationCodeGrant:
		form.Set(oauth2.ParamCode, r.Code)
		form.Set(oauth2.ParamRedirectURI, r.RedirectURI)
		if r.CodeVerifier != "" {
			form.Set(oauth2.ParamCodeVerifier, r.CodeVerifier)
		}
	case oauth2.RefreshTokenGrant:
		form.Set(oauth2.ParamRefreshToken, r.RefreshToken)
	}
	return form
}

// Validate rejects a request that is missing the fields its grant needs.
func (r TokenRequest) Validate() error {
	if r.ClientID == "" {
		return NewError(CodeInvalidRequest, "client id is required")
	}
	switch r.GrantType {
	case oauth2.AuthorizationCodeGrant:
		if r.Code == "" {
			return NewError(CodeInvalidRequest, "authorization code is required")
		}
		if r.RedirectURI == "" {
			return NewError(CodeInvalidRequest, "redirect uri is required")
		}
	case oauth2.RefreshTokenGrant:
		if r.RefreshToken == "" {
			return NewError(CodeInvalidRequest, "refresh token is required")
		}
	default:
		return NewError(CodeInvalidRequest, "unsupported grant type "+string(r.GrantType))
	}
	return nil
}
