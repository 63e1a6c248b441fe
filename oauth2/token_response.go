package oauth2

import (
	"errors"

	"github.com/tidwall/gjson"
)

// ErrMalformedTokenResponse is returned when the token endpoint body is not a JSON object.
var ErrMalformedTokenResponse = errors.New("malformed token response")

// TokenResponse represents the response from an OAuth2 token request.
// This is the RFC 6749 token endpoint payload with the extensions issued by
// multi-tenant authorities (ext_expires_in, id_token, correlation_id).
type TokenResponse struct {
	// AccessToken is the token used to call the protected resource.
	// Example: "eyJ0eXAiOiJKV1QiLCJhbGciOiJSUzI1NiJ9..."
	// Absent only when the response carries an error.
	AccessToken *string `json:"access_token,omitempty"`

	// IDToken is the OpenID Connect ID token carrying the user identity claims.
	// Used for: populating UserInfo and tenant id on the result
	// May be absent on refresh responses.
	IDToken *string `json:"id_token,omitempty"`

	// TokenType indicates how to use the access token, usually "Bearer".
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	// Some authorities send this as a JSON string ("3599"), both forms are accepted.
	ExpiresIn int64 `json:"expires_in,omitempty"`

	// ExtExpiresIn is the extended lifetime in seconds of the access token.
	// Used for: keeping the token usable during an authorization service outage
	// Zero when the authority does not issue extended-lifetime tokens.
	ExtExpiresIn int64 `json:"ext_expires_in,omitempty"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Nil when the server omitted it, which on a refresh grant means "keep the old one".
	RefreshToken *string `json:"refresh_token,omitempty"`

	// Resource echoes the resource the access token was issued for.
	Resource string `json:"resource,omitempty"`

	// Scope is the space separated list of granted scopes.
	Scope string `json:"scope,omitempty"`

	// Error is the OAuth2 error code when the request was rejected.
	// Example: "invalid_grant", "interaction_required"
	Error string `json:"error,omitempty"`

	// ErrorDescription is the human readable server explanation of Error.
	ErrorDescription string `json:"error_description,omitempty"`

	// ErrorCodes carries the numeric server error codes, when provided.
	ErrorCodes []int64 `json:"error_codes,omitempty"`

	// CorrelationID is the server side correlation id echoed for diagnostics.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// HasError reports whether the response carries an OAuth2 error payload.
func (tr *TokenResponse) HasError() bool {
	return tr != nil && tr.Error != ""
}

// ParseTokenResponse reads a token endpoint body. It tolerates numeric fields encoded as
// strings and missing optional fields, which plain encoding/json would reject.
func ParseTokenResponse(body []byte) (*TokenResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedTokenResponse
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, ErrMalformedTokenResponse
	}

	tr := &TokenResponse{
		TokenType:        root.Get("token_type").String(),
		ExpiresIn:        root.Get("expires_in").Int(),
		ExtExpiresIn:     root.Get("ext_expires_in").Int(),
		Resource:         root.Get("resource").String(),
		Scope:            root.Get("scope").String(),
		Error:            root.Get("error").String(),
		ErrorDescription: root.Get("error_description").String(),
		CorrelationID:    root.Get("correlation_id").String(),
		AccessToken:      optionalString(root, "access_token"),
		IDToken:          optionalString(root, "id_token"),
		RefreshToken:     optionalString(root, "refresh_token"),
	}
	for _, code := range root.Get("error_codes").Array() {
		tr.ErrorCodes = append(tr.ErrorCodes, code.Int())
	}
	return tr, nil
}

func optionalString(root gjson.Result, field string) *string {
	v := root.Get(field)
	if !v.Exists() || v.Type == gjson.Null || v.String() == "" {
		return nil
	}
	s := v.String()
	return &s
}
