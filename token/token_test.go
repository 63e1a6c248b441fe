package token_test

import (
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/internal/utils"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/require"
)

const testTenantID = "72f988bf-86f1-41af-91ab-2d7cd011db47"

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func signIDToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

func TestParseIDToken(t *testing.T) {
	t.Run("oid and upn preferred", func(t *testing.T) {
		raw := signIDToken(t, jwtlib.MapClaims{
			"oid":         "U1",
			"sub":         "subject",
			"upn":         "user@contoso.com",
			"email":       "mail@contoso.com",
			"tid":         testTenantID,
			"given_name":  "Ada",
			"family_name": "Lovelace",
			"iss":         "https://sts.windows.net/" + testTenantID + "/",
		})
		claims, err := token.ParseIDToken(raw)
		require.NoError(t, err)
		ui := claims.UserInfo()
		require.Equal(t, "U1", ui.UniqueID)
		require.Equal(t, "user@contoso.com", ui.DisplayableID)
		require.Equal(t, "Ada", ui.GivenName)
		require.Equal(t, "https://sts.windows.net/"+testTenantID+"/", ui.IdentityProvider)
		require.Equal(t, testTenantID, claims.TenantID)
	})

	t.Run("fallback claims", func(t *testing.T) {
		raw := signIDToken(t, jwtlib.MapClaims{
			"sub":         "subject",
			"unique_name": "live.com#user@outlook.com",
			"idp":         "live.com",
		})
		claims, err := token.ParseIDToken(raw)
		require.NoError(t, err)
		ui := claims.UserInfo()
		require.Equal(t, "subject", ui.UniqueID)
		require.Equal(t, "live.com#user@outlook.com", ui.DisplayableID)
		require.Equal(t, "live.com", ui.IdentityProvider)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := token.ParseIDToken("not-a-jwt")
		require.Error(t, err)
		_, err = token.ParseIDToken("")
		require.Error(t, err)
	})
}

func TestFromResponse(t *testing.T) {
	t.Run("full response", func(t *testing.T) {
		resp := &oauth2.TokenResponse{
			AccessToken:  utils.Ptr("at"),
			RefreshToken: utils.Ptr("rt"),
			IDToken:      utils.Ptr(signIDToken(t, jwtlib.MapClaims{"oid": "U1", "upn": "user@contoso.com", "tid": testTenantID})),
			TokenType:    "Bearer",
			ExpiresIn:    3600,
			ExtExpiresIn: 7200,
			Resource:     "https://graph.windows.net",
		}
		r, err := token.FromResponse(resp, testNow)
		require.NoError(t, err)
		require.Equal(t, "at", r.AccessToken)
		require.Equal(t, "rt", r.RefreshToken)
		require.Equal(t, testNow.Add(time.Hour), r.ExpiresOn)
		require.Equal(t, testNow.Add(2*time.Hour), r.ExtendedExpiresOn)
		require.False(t, r.ExtendedLifetime)
		require.Equal(t, testTenantID, r.TenantID)
		require.Equal(t, "U1", r.UniqueID())
		require.Equal(t, "user@contoso.com", r.DisplayableID())
	})

	t.Run("extended expiry never precedes expiry", func(t *testing.T) {
		r, err := token.FromResponse(&oauth2.TokenResponse{AccessToken: utils.Ptr("at"), ExpiresIn: 3600}, testNow)
		require.NoError(t, err)
		require.Equal(t, r.ExpiresOn, r.ExtendedExpiresOn)
		require.Empty(t, r.RefreshToken)
		require.Nil(t, r.UserInfo)
	})

	t.Run("error payload", func(t *testing.T) {
		_, err := token.FromResponse(&oauth2.TokenResponse{Error: "invalid_grant"}, testNow)
		require.ErrorIs(t, err, oauthmodel.ErrServiceError)
	})

	t.Run("missing access token", func(t *testing.T) {
		_, err := token.FromResponse(&oauth2.TokenResponse{TokenType: "Bearer"}, testNow)
		require.ErrorIs(t, err, oauthmodel.ErrServiceError)
	})

	t.Run("bad id token", func(t *testing.T) {
		_, err := token.FromResponse(&oauth2.TokenResponse{AccessToken: utils.Ptr("at"), IDToken: utils.Ptr("garbage")}, testNow)
		require.ErrorIs(t, err, oauthmodel.ErrServiceError)
	})
}

func TestHash(t *testing.T) {
	h := token.Hash("secret-access-token")
	require.NotEmpty(t, h)
	require.NotContains(t, h, "secret")
	require.Equal(t, h, token.Hash("secret-access-token"))
	require.NotEqual(t, h, token.Hash("other"))
	require.Empty(t, token.Hash(""))
}

func TestResult_OAuth2Token(t *testing.T) {
	r := &token.Result{
		AccessToken:  "at",
		RefreshToken: "rt",
		TokenType:    "Bearer",
		ExpiresOn:    testNow,
		Resource:     "https://graph.windows.net",
	}
	tok := r.OAuth2Token()
	require.Equal(t, "at", tok.AccessToken)
	require.Equal(t, "rt", tok.RefreshToken)
	require.Equal(t, testNow, tok.Expiry)
	require.Equal(t, "https://graph.windows.net", tok.Extra("resource"))
}

func TestNewCacheKey(t *testing.T) {
	a, err := authority.New("https://login.microsoftonline.com/Common")
	require.NoError(t, err)

	key := token.NewCacheKey(a, "res", "client", users.Identifier{})
	require.Equal(t, "https://login.microsoftonline.com/Common/", key.Authority)
	require.Equal(t, users.Any, key.SubjectType)
	require.Empty(t, key.SubjectID)

	key = token.NewCacheKey(a, "res", "client", users.NewUniqueID("U1"))
	require.Equal(t, users.UniqueID, key.SubjectType)
	require.Equal(t, "U1", key.SubjectID)
	require.Equal(t, users.NewUniqueID("U1"), key.Subject())
}
