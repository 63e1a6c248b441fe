package memcache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultExpirationMargin is how long before ExpiresOn an access token is treated as expired.
const DefaultExpirationMargin = 5 * time.Minute

var _ token.Cache = (*Cache)(nil)

// entryKey identifies a stored result by the identity the service returned.
type entryKey struct {
	authority     string
	resource      string
	clientID      string
	uniqueID      string
	displayableID string
}

// Cache is an in-memory token.Cache.
type Cache struct {
	entries map[entryKey]*token.Result
	lock    sync.RWMutex

	nowTime      func() time.Time
	margin       time.Duration
	beforeAccess func(token.NotificationArgs)
	afterAccess  func(token.NotificationArgs)
	logger       zerolog.Logger
}

type Option func(*Cache)

func WithNowTime(nowTime func() time.Time) Option {
	return func(c *Cache) {
		c.nowTime = nowTime
	}
}

func WithExpirationMargin(margin time.Duration) Option {
	return func(c *Cache) {
		c.margin = margin
	}
}

// WithBeforeAccess registers a hook run on every before-access notification.
func WithBeforeAccess(fn func(token.NotificationArgs)) Option {
	return func(c *Cache) {
		c.beforeAccess = fn
	}
}

// WithAfterAccess registers a hook run on every after-access notification.
func WithAfterAccess(fn func(token.NotificationArgs)) Option {
	return func(c *Cache) {
		c.afterAccess = fn
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[entryKey]*token.Result),
		nowTime: time.Now,
		margin:  DefaultExpirationMargin,
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) BeforeAccess(_ context.Context, args token.NotificationArgs) {
	if c.beforeAccess != nil {
		c.beforeAccess(args)
	}
}

func (c *Cache) AfterAccess(_ context.Context, args token.NotificationArgs) {
	if c.afterAccess != nil {
		c.afterAccess(args)
	}
}

// Lookup finds the entry for the query's key. When none exists for the resource, a refresh token
// issued to the same client and user by the same authority is returned on its own, since such
// tokens are valid for any resource.
func (c *Cache) Lookup(_ context.Context, query token.CacheQuery) (*token.Result, error) {
	c.lock.Lock()
	defer c.lock.Unlock()

	key := query.Key
	k, entry, err := c.find(key, func(ek entryKey) bool { return ek.resource == key.Resource })
	if err != nil {
		return nil, err
	}
	if entry != nil {
		return c.fresh(k, entry, query.ExtendedLifetimeEnabled), nil
	}

	_, entry, err = c.find(key, func(ek entryKey) bool { return true })
	if err != nil || entry == nil || !entry.HasRefreshToken() {
		return nil, err
	}
	c.logger.Debug().
		Str("resource", key.Resource).
		Str("from_resource", entry.Resource).
		Msg("using multi-resource refresh token")
	return &token.Result{
		RefreshToken: entry.RefreshToken,
		TenantID:     entry.TenantID,
		UserInfo:     entry.Clone().UserInfo,
		Authority:    entry.Authority,
		Resource:     key.Resource,
	}, nil
}

// fresh applies the expiry rules to an entry. Must be called with the lock held.
func (c *Cache) fresh(k entryKey, entry *token.Result, extendedLifetimeEnabled bool) *token.Result {
	now := c.nowTime()
	result := entry.Clone()
	result.ExtendedLifetime = false

	switch {
	case entry.ExpiresOn.After(now.Add(c.margin)):
		return result
	case extendedLifetimeEnabled && entry.ExtendedExpiresOn.After(now):
		result.ExtendedLifetime = true
		return result
	case entry.HasRefreshToken():
		result.AccessToken = ""
		return result
	}
	delete(c.entries, k)
	return nil
}

// find returns the single entry matching key and filter. Must be called with the lock held.
func (c *Cache) find(key token.CacheKey, filter func(entryKey) bool) (entryKey, *token.Result, error) {
	var (
		matchKey entryKey
		match    *token.Result
	)
	for ek, entry := range c.entries {
		if ek.authority != key.Authority || ek.clientID != key.ClientID || !filter(ek) {
			continue
		}
		if !subjectMatches(key.Subject(), ek) {
			continue
		}
		if match != nil && (ek.uniqueID != matchKey.uniqueID || ek.displayableID != matchKey.displayableID) {
			return entryKey{}, nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest,
				"multiple users hold tokens for this request, pass a user identifier")
		}
		if match == nil || ek.resource == key.Resource {
			matchKey, match = ek, entry
		}
	}
	return matchKey, match, nil
}

func subjectMatches(subject users.Identifier, ek entryKey) bool {
	switch subject.Type {
	case users.UniqueID:
		return subject.ID == ek.uniqueID
	case users.OptionalDisplayableID, users.RequiredDisplayableID:
		return strings.EqualFold(subject.ID, ek.displayableID)
	}
	return true
}

// Store writes result under the identity it carries and rolls its refresh token out to every
// other entry of the same client and user.
func (c *Cache) Store(_ context.Context, key token.CacheKey, result *token.Result) error {
	if result == nil {
		return nil
	}
	ek := entryKey{
		authority:     key.Authority,
		resource:      key.Resource,
		clientID:      key.ClientID,
		uniqueID:      result.UniqueID(),
		displayableID: result.DisplayableID(),
	}
	if ek.uniqueID == "" && ek.displayableID == "" && !key.Subject().IsAnyUser() {
		if key.SubjectType == users.UniqueID {
			ek.uniqueID = key.SubjectID
		} else {
			ek.displayableID = key.SubjectID
		}
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	stored := result.Clone()
	stored.ExtendedLifetime = false
	c.entries[ek] = stored

	if stored.HasRefreshToken() {
		for other, entry := range c.entries {
			if other == ek || other.authority != ek.authority || other.clientID != ek.clientID {
				continue
			}
			if other.uniqueID == ek.uniqueID && other.displayableID == ek.displayableID {
				entry.RefreshToken = stored.RefreshToken
			}
		}
	}
	return nil
}

// Clear removes every entry.
func (c *Cache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries = make(map[entryKey]*token.Result)
}

// Count returns the number of stored entries.
func (c *Cache) Count() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}
