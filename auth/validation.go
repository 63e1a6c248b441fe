package auth

import (
	"strings"

	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
)

// validateAuthorizationResponse checks, in order: the echoed state of a successful response,
// login_required whatever the status, user cancellation, then any other failure as a service error.
func validateAuthorizationResponse(resp *oauthmodel.AuthorizationResponse, expectedState string) error {
	if resp.Status == oauthmodel.AuthorizationSuccess && !strings.EqualFold(resp.State, expectedState) {
		return oauthmodel.NewError(oauthmodel.CodeStateMismatch,
			"returned state does not match the state sent on the authorization request")
	}
	switch {
	case resp.Error == oauth2.ErrorLoginRequired:
		return &oauthmodel.Error{
			Code:        oauthmodel.CodeUserInteractionRequired,
			Message:     "the user must sign in",
			ServiceCode: resp.Error,
			Description: resp.ErrorDescription,
		}
	case resp.Status == oauthmodel.AuthorizationUserCanceled:
		return oauthmodel.NewError(oauthmodel.CodeUserCanceled, "the user canceled the authentication")
	case resp.Status != oauthmodel.AuthorizationSuccess:
		return oauthmodel.NewServiceError(0, resp.Error, resp.ErrorDescription)
	}
	return nil
}

// verifyUser checks that a token issued for a required user was issued for that user.
func verifyUser(user users.Identifier, result *token.Result) error {
	if !user.MustMatch() {
		return nil
	}
	uniqueID, displayableID := result.UniqueID(), result.DisplayableID()
	if user.Matches(uniqueID, displayableID) {
		return nil
	}
	return oauthmodel.NewUserMismatchError(user.ID, user.Returned(uniqueID, displayableID))
}
