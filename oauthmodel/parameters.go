package oauthmodel

import (
	"net/url"
	"sort"
	"strings"

	"github.com/jrsteele09/go-auth-client/oauth2"
)

// reservedParameters may never be supplied as extra query parameters, whether or not the request
// sets them.
var reservedParameters = map[string]bool{
	oauth2.ParamResponseType:        true,
	oauth2.ParamClientID:            true,
	oauth2.ParamRedirectURI:         true,
	oauth2.ParamResource:            true,
	oauth2.ParamState:               true,
	oauth2.ParamLoginHint:           true,
	oauth2.ParamClaims:              true,
	oauth2.ParamCodeChallenge:       true,
	oauth2.ParamCodeChallengeMethod: true,
	oauth2.ParamCorrelationID:       true,
}

// AuthorizationRequest holds parameters for the OAuth2 authorization request.
// These are sent as query parameters to the authority's /oauth2/authorize endpoint.
type AuthorizationRequest struct {
	// ClientID identifies the application requesting authorization.
	// Required: Yes
	// Example: "9ba1a5c7-f17a-4de9-a1f1-6178c8d51223"
	ClientID string

	// ResponseType specifies what the authorization endpoint should return.
	// Required: Yes
	// Example: "code" (only supported value)
	ResponseType oauth2.ResponseType

	// Resource identifies the API the token will be issued for.
	// Required: No (omitted when the request marks the resource optional)
	// Example: "https://graph.windows.net"
	Resource string

	// RedirectURI is where the authorization response will be sent.
	// Required: Yes
	// Example: "http://localhost:8400/"
	// Resolved from the platform default when the caller does not supply one.
	RedirectURI string

	// LoginHint pre-fills the username on the sign-in page.
	// Required: No
	// Set only when the request targets a specific displayable id, never for "any user".
	LoginHint string

	// Claims is a claims challenge returned by a resource that rejected the cached token.
	// Required: No
	// Presence forces the orchestrator to bypass the cache read for this attempt.
	Claims string

	// CodeChallenge is the PKCE challenge derived from the attempt's verifier.
	// Required: No (absent on the URI preview path)
	// Example: BASE64URL(SHA256(code_verifier))
	CodeChallenge string

	// CodeChallengeMethod specifies how CodeChallenge was derived.
	// Required: Yes if CodeChallenge is provided
	CodeChallengeMethod oauth2.CodeMethodType

	// State is an opaque per-attempt random value echoed on the redirect.
	// Required: Yes for a real round trip, absent on the URI preview path
	// Security: compared case-insensitively with the echoed value before the code is used
	State string

	// Prompt forces a behavior on the sign-in page.
	// Required: No
	// Example: "login" to ignore any existing browser session
	Prompt string

	// CorrelationID ties the browser request to the token request in server logs.
	CorrelationID string

	// Telemetry holds platform-reported client parameters (SKU, version, OS).
	Telemetry map[string]string

	// ExtraQueryParameters is the caller supplied query string, "k1=v1&k2=v2".
	// Validated: no key may collide with a parameter already set above
	ExtraQueryParameters string
}

// Validate checks the structural constraints that do not depend on the authority.
func (p *AuthorizationRequest) Validate() error {
	if strings.TrimSpace(p.ClientID) == "" {
		return NewError(CodeInvalidRequest, "client id is required")
	}
	if !responseTypeValid(p.ResponseType) {
		return NewError(CodeInvalidRequest, "unsupported response type "+string(p.ResponseType))
	}
	if !codeChallengeMethodValid(p.CodeChallenge, p.CodeChallengeMethod) {
		return NewError(CodeInvalidRequest, "invalid code challenge method "+string(p.CodeChallengeMethod))
	}
	if _, err := ParseRedirectURI(p.RedirectURI); err != nil {
		return err
	}
	return nil
}

// Query assembles the authorization query. Extra query parameters are merged last and any key
// already present fails the whole request with CodeDuplicateQueryParameter.
func (p *AuthorizationRequest) Query() (url.Values, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set(oauth2.ParamResponseType, string(p.ResponseType))
	q.Set(oauth2.ParamClientID, p.ClientID)
	q.Set(oauth2.ParamRedirectURI, p.RedirectURI)
	if p.Resource != "" {
		q.Set(oauth2.ParamResource, p.Resource)
	}
	if p.LoginHint != "" {
		q.Set(oauth2.ParamLoginHint, p.LoginHint)
	}
	if p.Claims != "" {
		q.Set(oauth2.ParamClaims, p.Claims)
	}
	if p.Prompt != "" {
		q.Set(oauth2.ParamPrompt, p.Prompt)
	}
	if p.CorrelationID != "" {
		q.Set(oauth2.ParamCorrelationID, p.CorrelationID)
	}
	if p.State != "" {
		q.Set(oauth2.ParamState, p.State)
	}
	if p.CodeChallenge != "" {
		q.Set(oauth2.ParamCodeChallenge, p.CodeChallenge)
		q.Set(oauth2.ParamCodeChallengeMethod, string(p.CodeChallengeMethod))
	}
	for k, v := range p.Telemetry {
		q.Set(k, v)
	}

	extra, err := ParseExtraQueryParameters(p.ExtraQueryParameters)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if _, exists := q[k]; exists || reservedParameters[k] {
			return nil, NewDuplicateQueryParameterError(k)
		}
		q[k] = extra[k]
	}
	return q, nil
}

// URL renders the full authorization URL against endpoint.
func (p *AuthorizationRequest) URL(endpoint string) (*url.URL, error) {
	q, err := p.Query()
	if err != nil {
		return nil, err
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, WrapError(CodeInvalidRequest, "invalid authorization endpoint", err)
	}
	u.RawQuery = q.Encode()
	return u, nil
}

// ParseExtraQueryParameters parses "k1=v1&k2=v2" and rejects a key given twice.
// A leading '&' or '?' is tolerated.
func ParseExtraQueryParameters(raw string) (url.Values, error) {
	raw = strings.TrimLeft(strings.TrimSpace(raw), "?&")
	if raw == "" {
		return url.Values{}, nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, WrapError(CodeInvalidRequest, "malformed extra query parameters", err)
	}
	for k, v := range values {
		if len(v) > 1 {
			return nil, NewDuplicateQueryParameterError(k)
		}
	}
	return values, nil
}

// ParseRedirectURI validates a redirect URI structurally: absolute, with a scheme, and
// without a fragment.
func ParseRedirectURI(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, NewError(CodeInvalidRedirectURI, "redirect uri is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, WrapError(CodeInvalidRedirectURI, "malformed redirect uri", err)
	}
	if u.Scheme == "" || !u.IsAbs() {
		return nil, NewError(CodeInvalidRedirectURI, "redirect uri must be absolute: "+raw)
	}
	if u.Fragment != "" {
		return nil, NewError(CodeInvalidRedirectURI, "redirect uri must not contain a fragment: "+raw)
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host == "" {
		return nil, NewError(CodeInvalidRedirectURI, "redirect uri has no host: "+raw)
	}
	return u, nil
}

func codeChallengeMethodValid(codeChallenge string, challengeMethod oauth2.CodeMethodType) bool {
	if strings.TrimSpace(codeChallenge) == "" {
		return true
	}
	switch challengeMethod {
	case oauth2.CodeMethodTypeS256, oauth2.CodeMethodTypePlain:
		return true
	}
	return false
}

func responseTypeValid(responseType oauth2.ResponseType) bool {
	return responseType == oauth2.CodeResponseType
}
