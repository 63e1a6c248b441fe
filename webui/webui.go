// Package webui drives the user facing step of the authorization code flow. A WebUI shows the
// authorization URI to the user and returns what the authority sent to the redirect URI.
package webui

import (
	"context"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/pkg/errors"
)

// WebUI is the platform surface that performs the authorization challenge.
//
// Challenge returns a response with status AuthorizationUserCanceled when the user closed the
// surface, and an error only when the surface itself failed.
type WebUI interface {
	Challenge(ctx context.Context, authorizationURI, redirectURI string) (*oauthmodel.AuthorizationResponse, error)
}

// Func adapts a function to WebUI.
type Func func(ctx context.Context, authorizationURI, redirectURI string) (*oauthmodel.AuthorizationResponse, error)

func (f Func) Challenge(ctx context.Context, authorizationURI, redirectURI string) (*oauthmodel.AuthorizationResponse, error) {
	return f(ctx, authorizationURI, redirectURI)
}

// interrupted reports why ctx ended the challenge: a deadline is a network class timeout, anything
// else is the caller canceling.
func interrupted(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return oauthmodel.WrapError(oauthmodel.CodeNetworkUnavailable, "authorization challenge timed out", ctx.Err())
	}
	return oauthmodel.WrapError(oauthmodel.CodeUserCanceled, "authorization challenge canceled", ctx.Err())
}
