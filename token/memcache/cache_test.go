package memcache_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/token/memcache"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/stretchr/testify/require"
)

const (
	testAuthority = "https://login.microsoftonline.com/common/"
	testClientID  = "client"
	testResource  = "https://graph.windows.net"
)

var testNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newKey(t *testing.T, resource string, subject users.Identifier) token.CacheKey {
	t.Helper()
	a, err := authority.New(testAuthority)
	require.NoError(t, err)
	return token.NewCacheKey(a, resource, testClientID, subject)
}

func newResult(expiresIn, extExpiresIn time.Duration, refreshToken string) *token.Result {
	return &token.Result{
		AccessToken:       "at",
		RefreshToken:      refreshToken,
		ExpiresOn:         testNow.Add(expiresIn),
		ExtendedExpiresOn: testNow.Add(extExpiresIn),
		Resource:          testResource,
		UserInfo:          &token.UserInfo{UniqueID: "U1", DisplayableID: "user@contoso.com"},
	}
}

func TestCache_Lookup(t *testing.T) {
	ctx := context.Background()

	t.Run("miss", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		r, err := c.Lookup(ctx, token.CacheQuery{Key: newKey(t, testResource, users.AnyUser)})
		require.NoError(t, err)
		require.Nil(t, r)
	})

	t.Run("fresh hit is a copy", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		key := newKey(t, testResource, users.AnyUser)
		require.NoError(t, c.Store(ctx, key, newResult(time.Hour, time.Hour, "rt")))

		r, err := c.Lookup(ctx, token.CacheQuery{Key: key})
		require.NoError(t, err)
		require.Equal(t, "at", r.AccessToken)
		require.False(t, r.ExtendedLifetime)

		r.AccessToken = "mutated"
		again, err := c.Lookup(ctx, token.CacheQuery{Key: key})
		require.NoError(t, err)
		require.Equal(t, "at", again.AccessToken)
	})

	t.Run("expiry margin leaves only the refresh token", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		key := newKey(t, testResource, users.AnyUser)
		require.NoError(t, c.Store(ctx, key, newResult(2*time.Minute, 2*time.Minute, "rt")))

		r, err := c.Lookup(ctx, token.CacheQuery{Key: key})
		require.NoError(t, err)
		require.Empty(t, r.AccessToken)
		require.Equal(t, "rt", r.RefreshToken)
	})

	t.Run("extended lifetime", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		key := newKey(t, testResource, users.AnyUser)
		require.NoError(t, c.Store(ctx, key, newResult(-time.Minute, time.Hour, "rt")))

		r, err := c.Lookup(ctx, token.CacheQuery{Key: key, ExtendedLifetimeEnabled: true})
		require.NoError(t, err)
		require.Equal(t, "at", r.AccessToken)
		require.True(t, r.ExtendedLifetime)

		r, err = c.Lookup(ctx, token.CacheQuery{Key: key})
		require.NoError(t, err)
		require.Empty(t, r.AccessToken)
		require.False(t, r.ExtendedLifetime)
	})

	t.Run("expired without refresh token is evicted", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		key := newKey(t, testResource, users.AnyUser)
		require.NoError(t, c.Store(ctx, key, newResult(-time.Hour, -time.Hour, "")))

		r, err := c.Lookup(ctx, token.CacheQuery{Key: key})
		require.NoError(t, err)
		require.Nil(t, r)
		require.Equal(t, 0, c.Count())
	})

	t.Run("user matching", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		require.NoError(t, c.Store(ctx, newKey(t, testResource, users.AnyUser), newResult(time.Hour, time.Hour, "rt")))

		r, err := c.Lookup(ctx, token.CacheQuery{Key: newKey(t, testResource, users.NewUniqueID("U1"))})
		require.NoError(t, err)
		require.NotNil(t, r)

		r, err = c.Lookup(ctx, token.CacheQuery{Key: newKey(t, testResource, users.NewDisplayableID("USER@contoso.com", true))})
		require.NoError(t, err)
		require.NotNil(t, r)

		r, err = c.Lookup(ctx, token.CacheQuery{Key: newKey(t, testResource, users.NewUniqueID("U2"))})
		require.NoError(t, err)
		require.Nil(t, r)
	})

	t.Run("multiple users require an identifier", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		other := newResult(time.Hour, time.Hour, "rt2")
		other.UserInfo = &token.UserInfo{UniqueID: "U2", DisplayableID: "other@contoso.com"}
		require.NoError(t, c.Store(ctx, newKey(t, testResource, users.AnyUser), newResult(time.Hour, time.Hour, "rt")))
		require.NoError(t, c.Store(ctx, newKey(t, testResource, users.AnyUser), other))

		_, err := c.Lookup(ctx, token.CacheQuery{Key: newKey(t, testResource, users.AnyUser)})
		require.ErrorIs(t, err, oauthmodel.ErrInvalidRequest)

		r, err := c.Lookup(ctx, token.CacheQuery{Key: newKey(t, testResource, users.NewUniqueID("U2"))})
		require.NoError(t, err)
		require.Equal(t, "rt2", r.RefreshToken)
	})

	t.Run("multi-resource refresh token", func(t *testing.T) {
		c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))
		require.NoError(t, c.Store(ctx, newKey(t, testResource, users.AnyUser), newResult(time.Hour, time.Hour, "rt")))

		r, err := c.Lookup(ctx, token.CacheQuery{Key: newKey(t, "https://outlook.office.com", users.AnyUser)})
		require.NoError(t, err)
		require.Empty(t, r.AccessToken)
		require.Equal(t, "rt", r.RefreshToken)
		require.Equal(t, "https://outlook.office.com", r.Resource)
		require.Equal(t, "U1", r.UniqueID())
	})
}

func TestCache_StoreRollsRefreshToken(t *testing.T) {
	ctx := context.Background()
	c := memcache.New(memcache.WithNowTime(func() time.Time { return testNow }))

	require.NoError(t, c.Store(ctx, newKey(t, testResource, users.AnyUser), newResult(time.Hour, time.Hour, "rt-old")))
	outlook := newResult(time.Hour, time.Hour, "rt-new")
	outlook.Resource = "https://outlook.office.com"
	require.NoError(t, c.Store(ctx, newKey(t, "https://outlook.office.com", users.AnyUser), outlook))
	require.Equal(t, 2, c.Count())

	r, err := c.Lookup(ctx, token.CacheQuery{Key: newKey(t, testResource, users.AnyUser)})
	require.NoError(t, err)
	require.Equal(t, "rt-new", r.RefreshToken)

	c.Clear()
	require.Equal(t, 0, c.Count())
}

func TestCache_Notifications(t *testing.T) {
	var before, after []token.NotificationArgs
	c := memcache.New(
		memcache.WithBeforeAccess(func(a token.NotificationArgs) { before = append(before, a) }),
		memcache.WithAfterAccess(func(a token.NotificationArgs) { after = append(after, a) }),
	)
	args := token.NotificationArgs{Resource: testResource, ClientID: testClientID}
	c.BeforeAccess(context.Background(), args)
	c.AfterAccess(context.Background(), args)
	require.Equal(t, []token.NotificationArgs{args}, before)
	require.Equal(t, []token.NotificationArgs{args}, after)
}
