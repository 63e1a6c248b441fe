package oauthmodel

import (
	"net/url"

	"github.com/jrsteele09/go-auth-client/oauth2"
)

// AuthorizationStatus is the outcome of the user facing authorization step.
type AuthorizationStatus string

const (
	AuthorizationSuccess       AuthorizationStatus = "success"
	AuthorizationProtocolError AuthorizationStatus = "protocol_error"
	AuthorizationUserCanceled  AuthorizationStatus = "user_canceled"
	AuthorizationUnknownError  AuthorizationStatus = "unknown_error"
)

// AuthorizationResponse is what the authority sent back on the redirect URI.
type AuthorizationResponse struct {
	Status AuthorizationStatus

	// Code is the authorization code, or a broker invocation URI when the broker must act.
	Code string

	Error            string
	ErrorDescription string

	// State echoes the value sent on the authorization request.
	State string

	// CloudInstanceHost, when set, names the host the authority must be rewritten to.
	CloudInstanceHost string
}

// ParseAuthorizationResponse reads the redirect parameters from either the query string or a
// form_post body.
func ParseAuthorizationResponse(values url.Values) *AuthorizationResponse {
	resp := &AuthorizationResponse{
		Code:              values.Get(oauth2.ParamCode),
		Error:             values.Get(oauth2.ParamError),
		ErrorDescription:  values.Get(oauth2.ParamErrorDescription),
		State:             values.Get(oauth2.ParamState),
		CloudInstanceHost: values.Get(oauth2.ParamCloudInstance),
	}
	switch {
	case resp.Error != "":
		resp.Status = AuthorizationProtocolError
	case resp.Code != "":
		resp.Status = AuthorizationSuccess
	default:
		resp.Status = AuthorizationUnknownError
		resp.Error = "invalid_response"
		resp.ErrorDescription = "redirect carried neither a code nor an error"
	}
	return resp
}

// ParseAuthorizationRedirect parses a full redirect URL, as pasted by a user on a headless host.
func ParseAuthorizationRedirect(raw string) (*AuthorizationResponse, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, WrapError(CodeInvalidRequest, "malformed redirect url", err)
	}
	values := u.Query()
	// Implicit style responses put the parameters in the fragment.
	if len(values) == 0 && u.Fragment != "" {
		if fv, ferr := url.ParseQuery(u.Fragment); ferr == nil {
			values = fv
		}
	}
	return ParseAuthorizationResponse(values), nil
}

// Canceled builds the response a WebUI reports when the user closed the surface.
func Canceled() *AuthorizationResponse {
	return &AuthorizationResponse{
		Status:           AuthorizationUserCanceled,
		Error:            "authentication_canceled",
		ErrorDescription: "the user canceled the authentication",
	}
}
