package token

import (
	"time"

	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
)

// FromResponse translates a token endpoint response into a Result. The extended expiry never
// precedes the regular expiry.
func FromResponse(resp *oauth2.TokenResponse, now time.Time) (*Result, error) {
	if resp == nil {
		return nil, oauthmodel.NewError(oauthmodel.CodeServiceError, "empty token response")
	}
	if resp.HasError() {
		return nil, oauthmodel.NewServiceError(0, resp.Error, resp.ErrorDescription)
	}
	if resp.AccessToken == nil {
		return nil, oauthmodel.NewError(oauthmodel.CodeServiceError, "token response has no access_token")
	}

	r := &Result{
		AccessToken:  *resp.AccessToken,
		RefreshToken: utils.Value(resp.RefreshToken),
		TokenType:    resp.TokenType,
		ExpiresOn:    now.Add(time.Duration(resp.ExpiresIn) * time.Second),
		Resource:     resp.Resource,
	}
	r.ExtendedExpiresOn = r.ExpiresOn
	if resp.ExtExpiresIn > resp.ExpiresIn {
		r.ExtendedExpiresOn = now.Add(time.Duration(resp.ExtExpiresIn) * time.Second)
	}

	if resp.IDToken != nil {
		claims, err := ParseIDToken(*resp.IDToken)
		if err != nil {
			return nil, oauthmodel.WrapError(oauthmodel.CodeServiceError, "token response carries an invalid id_token", err)
		}
		r.IDToken = *resp.IDToken
		r.TenantID = claims.TenantID
		r.UserInfo = claims.UserInfo()
	}
	return r, nil
}
