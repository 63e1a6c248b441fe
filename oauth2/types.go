package oauth2

// ResponseType represents the OAuth 2.0 response type.
// Determines what is returned from the authorization endpoint.
type ResponseType string

const (
	// CodeResponseType indicates the authorization code flow.
	// Used in: Interactive acquisition (the only flow this client drives through a browser)
	// The returned code is redeemed at the token endpoint together with the PKCE verifier.
	// Example: /oauth2/authorize?response_type=code&client_id=...
	CodeResponseType ResponseType = "code"
)

// CodeMethodType represents the PKCE (Proof Key for Code Exchange) challenge method.
// Used to bind an authorization code to the client instance that asked for it.
type CodeMethodType string

const (
	// CodeMethodTypeS256 indicates SHA-256 hashing is used for the code challenge.
	// Client sends: code_challenge = BASE64URL(SHA256(code_verifier))
	// Client later sends: code_verifier at the token endpoint
	CodeMethodTypeS256 CodeMethodType = "S256"

	// CodeMethodTypePlain means no hashing, the verifier is sent as the challenge.
	// Never generated by this client, accepted only when validating caller supplied requests.
	CodeMethodTypePlain CodeMethodType = "plain"
)

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines which grant-specific fields accompany the request.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Used in: Interactive acquisition, after the WebUI challenge completes
	// Token request includes: code, redirect_uri, code_verifier, client_id, resource
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Used in: Silent acquisition when the cached access token is missing or extended-lifetime
	// Token request includes: refresh_token, client_id, resource
	// The server may omit a new refresh_token, in which case the old one stays valid.
	RefreshTokenGrant GrantType = "refresh_token"
)

// Request parameter names shared by the authorization and token endpoints.
const (
	ParamResponseType        = "response_type"
	ParamClientID            = "client_id"
	ParamClientSecret        = "client_secret"
	ParamRedirectURI         = "redirect_uri"
	ParamResource            = "resource"
	ParamState               = "state"
	ParamLoginHint           = "login_hint"
	ParamClaims              = "claims"
	ParamCodeChallenge       = "code_challenge"
	ParamCodeChallengeMethod = "code_challenge_method"
	ParamCorrelationID       = "client-request-id"
	ParamGrantType           = "grant_type"
	ParamCode                = "code"
	ParamCodeVerifier        = "code_verifier"
	ParamRefreshToken        = "refresh_token"
	ParamPrompt              = "prompt"
)

// Response parameter names returned on the redirect URI by the authorization endpoint.
const (
	ParamError            = "error"
	ParamErrorDescription = "error_description"
	ParamCloudInstance    = "cloud_instance_host_name"
)

// Header names used for correlating a token request with server side logs.
const (
	HeaderCorrelationID       = "client-request-id"
	HeaderReturnCorrelationID = "return-client-request-id"
)

// Error codes returned by the authorization and token endpoints that the client branches on.
const (
	ErrorLoginRequired       = "login_required"
	ErrorInteractionRequired = "interaction_required"
	ErrorConsentRequired     = "consent_required"
	ErrorInvalidGrant        = "invalid_grant"
)
