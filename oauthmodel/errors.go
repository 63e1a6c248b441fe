package oauthmodel

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies every failure an acquisition can surface to the caller.
type ErrorCode string

const (
	CodeInvalidRequest          ErrorCode = "invalid_request"
	CodeInvalidAuthorityType    ErrorCode = "invalid_authority_type"
	CodeInvalidRedirectURI      ErrorCode = "invalid_redirect_uri"
	CodeNetworkUnavailable      ErrorCode = "network_unavailable"
	CodeServiceOutage           ErrorCode = "service_outage"
	CodeServiceError            ErrorCode = "service_error"
	CodeUserInteractionRequired ErrorCode = "user_interaction_required"
	CodeStateMismatch           ErrorCode = "state_mismatch"
	CodeDuplicateQueryParameter ErrorCode = "duplicate_query_parameter"
	CodeUserMismatch            ErrorCode = "user_mismatch"
	CodeUserCanceled            ErrorCode = "authentication_canceled"
	CodeBrokerUnavailable       ErrorCode = "broker_unavailable"
)

// Sentinels for errors.Is. Any *Error with the same Code matches.
var (
	ErrInvalidRequest          = &Error{Code: CodeInvalidRequest}
	ErrInvalidAuthorityType    = &Error{Code: CodeInvalidAuthorityType}
	ErrInvalidRedirectURI      = &Error{Code: CodeInvalidRedirectURI}
	ErrNetworkUnavailable      = &Error{Code: CodeNetworkUnavailable}
	ErrServiceOutage           = &Error{Code: CodeServiceOutage}
	ErrServiceError            = &Error{Code: CodeServiceError}
	ErrUserInteractionRequired = &Error{Code: CodeUserInteractionRequired}
	ErrStateMismatch           = &Error{Code: CodeStateMismatch}
	ErrDuplicateQueryParameter = &Error{Code: CodeDuplicateQueryParameter}
	ErrUserMismatch            = &Error{Code: CodeUserMismatch}
	ErrUserCanceled            = &Error{Code: CodeUserCanceled}
	ErrBrokerUnavailable       = &Error{Code: CodeBrokerUnavailable}
)

// Error is the structured failure returned by every acquisition.
type Error struct {
	Code ErrorCode

	// Message is a client side explanation.
	Message string

	// ServiceCode and Description carry the server's error payload verbatim.
	ServiceCode string
	Description string

	// StatusCode is the HTTP status of the failed token endpoint call, zero otherwise.
	StatusCode int

	// Expected and Actual are set on CodeUserMismatch.
	Expected string
	Actual   string

	// Parameter is set on CodeDuplicateQueryParameter.
	Parameter string

	Err error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.ServiceCode != "" {
		fmt.Fprintf(&sb, " (%s", e.ServiceCode)
		if e.Description != "" {
			fmt.Fprintf(&sb, ": %s", e.Description)
		}
		sb.WriteString(")")
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, " [status %d]", e.StatusCode)
	}
	if e.Err != nil {
		fmt.Fprintf(&sb, ": %v", e.Err)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches on Code so callers can branch with errors.Is(err, oauthmodel.ErrStateMismatch).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf returns the ErrorCode of the first *Error in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsOutage reports whether err is a transient service failure eligible for stale-token fallback.
func IsOutage(err error) bool {
	return CodeOf(err) == CodeServiceOutage
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NewServiceError builds a ServiceError (or UserInteractionRequired when the server asks for it)
// from an OAuth2 error payload.
func NewServiceError(statusCode int, serviceCode, description string) *Error {
	code := CodeServiceError
	switch serviceCode {
	case "interaction_required", "consent_required", "login_required":
		code = CodeUserInteractionRequired
	}
	return &Error{
		Code:        code,
		Message:     "server rejected the request",
		ServiceCode: serviceCode,
		Description: description,
		StatusCode:  statusCode,
	}
}

func NewUserMismatchError(expected, actual string) *Error {
	return &Error{
		Code:     CodeUserMismatch,
		Message:  fmt.Sprintf("user returned by service %q does not match the requested user %q", actual, expected),
		Expected: expected,
		Actual:   actual,
	}
}

func NewDuplicateQueryParameterError(parameter string) *Error {
	return &Error{
		Code:      CodeDuplicateQueryParameter,
		Message:   fmt.Sprintf("extra query parameter %q is already set", parameter),
		Parameter: parameter,
	}
}
