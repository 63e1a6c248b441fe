package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/broker"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// attempt is the state of one acquisition. Nothing in it outlives the call.
type attempt struct {
	req           Request
	flow          flow
	authority     *authority.Authority
	correlationID string
	redirectURI   string
	cacheKey      token.CacheKey
	brokerParams  broker.Parameters
	logger        zerolog.Logger

	// notified is set once the cache's before-access notification fired.
	notified bool

	// fallback is an extended-lifetime cached result kept after a refresh hit a service outage.
	fallback   *token.Result
	refreshErr error

	// authorityOverride is the authority a broker reported the token was issued by.
	authorityOverride string

	// Interactive state, generated once per attempt.
	state                string
	verifier             string
	authorizationRequest *oauthmodel.AuthorizationRequest
	authorizationCode    string
	brokerInstall        bool
}

type outcomeKind int

const (
	outcomeSuccess outcomeKind = iota
	outcomeFatal
	outcomeFallback
)

// outcome is how an attempt ended. A fallback outcome carries both the error and the stale
// result returned in its place.
type outcome struct {
	kind   outcomeKind
	result *token.Result
	err    error
}

func (a *Acquirer) acquire(ctx context.Context, req Request, f flow) (*token.Result, error) {
	att, err := a.initialize(req, f)
	if err != nil {
		return nil, err
	}
	defer a.notifyAfter(ctx, att)

	result, err := a.execute(ctx, att)
	return a.resolve(att, a.conclude(att, result, err))
}

// conclude applies the fallback rule. It is the only place an error is turned into a result.
func (a *Acquirer) conclude(att *attempt, result *token.Result, err error) outcome {
	if err == nil {
		return outcome{kind: outcomeSuccess, result: result}
	}
	if att.fallback != nil && oauthmodel.CodeOf(err) != oauthmodel.CodeUserCanceled {
		return outcome{kind: outcomeFallback, result: att.fallback, err: err}
	}
	return outcome{kind: outcomeFatal, err: err}
}

func (a *Acquirer) resolve(att *attempt, out outcome) (*token.Result, error) {
	switch out.kind {
	case outcomeSuccess:
		return out.result, nil
	case outcomeFallback:
		att.logger.Warn().
			Err(out.err).
			Str("token_hash", token.Hash(out.result.AccessToken)).
			Time("extended_expires_on", out.result.ExtendedExpiresOn).
			Msg("service unavailable, returning extended-lifetime token")
		out.result.Authority = att.authority.URI
		return out.result, nil
	}
	att.logger.Debug().Err(out.err).Msg("acquisition failed")
	return nil, out.err
}

func (a *Acquirer) initialize(req Request, f flow) (*attempt, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	target, err := authority.New(req.Authority)
	if err != nil {
		return nil, err
	}
	if err := target.Validate(f.authorityTypes()...); err != nil {
		return nil, err
	}

	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	att := &attempt{
		req:           req,
		flow:          f,
		authority:     target,
		correlationID: correlationID,
		redirectURI:   a.redirectURI(req),
		cacheKey:      token.NewCacheKey(target, req.Resource, req.Client.ID, req.User),
		logger: a.logger.With().
			Str("correlation_id", correlationID).
			Str("flow", f.name()).
			Str("authority", target.URI).
			Str("resource", req.Resource).
			Str("client_id", req.Client.ID).
			Logger(),
	}
	att.brokerParams = a.brokerParameters(att)

	if err := f.prepare(a, att); err != nil {
		return nil, err
	}
	return att, nil
}

func (a *Acquirer) redirectURI(req Request) string {
	if req.RedirectURI != "" {
		return req.RedirectURI
	}
	return a.platform.DefaultRedirectURI(req.Client.ID)
}

func (a *Acquirer) brokerParameters(att *attempt) broker.Parameters {
	req := att.req
	p := broker.NewParameters(map[string]string{
		broker.KeyAuthority:     att.authority.URI,
		broker.KeyResource:      req.Resource,
		broker.KeyClientID:      req.Client.ID,
		broker.KeyCorrelationID: att.correlationID,
		broker.KeyClientVersion: a.platform.ClientVersion(),
		broker.KeyRedirectURI:   att.redirectURI,
	})
	if req.ExtraQueryParameters != "" {
		p = p.With(broker.KeyExtraQP, req.ExtraQueryParameters)
	}
	if req.Claims != "" {
		p = p.With(broker.KeyClaims, req.Claims)
	}
	if !req.User.IsAnyUser() {
		p = p.With(broker.KeyUsername, req.User.ID).With(broker.KeyUsernameType, string(req.User.Type))
	}
	if req.ForcePrompt {
		p = p.With(broker.KeyForce, "true")
	}
	return p
}

func (a *Acquirer) execute(ctx context.Context, att *attempt) (*token.Result, error) {
	if att.req.readsCache() {
		cached, err := a.lookup(ctx, att)
		if err != nil {
			return nil, err
		}
		if result, done, err := a.fromCache(ctx, att, cached); done {
			return result, err
		}
	}

	result, err := a.acquireFromService(ctx, att)
	if err != nil {
		return nil, err
	}
	return a.complete(ctx, att, result)
}

// fromCache decides what a cache hit is worth. done is false when the acquisition has to go to
// the service.
func (a *Acquirer) fromCache(ctx context.Context, att *attempt, cached *token.Result) (*token.Result, bool, error) {
	if cached == nil {
		return nil, false, nil
	}

	if cached.HasRefreshToken() && (!cached.HasAccessToken() || cached.ExtendedLifetime) {
		refreshed, err := a.refresh(ctx, att, cached)
		if err == nil {
			result, err := a.complete(ctx, att, refreshed)
			return result, true, err
		}
		att.refreshErr = err
		if oauthmodel.IsOutage(err) && cached.ExtendedLifetime && cached.HasAccessToken() {
			att.fallback = cached
		}
		att.logger.Info().Err(err).Bool("fallback_available", att.fallback != nil).Msg("refresh failed")
		return nil, false, nil
	}

	if !cached.HasAccessToken() {
		return nil, false, nil
	}
	if err := a.postProcess(att, cached); err != nil {
		return nil, true, err
	}
	return cached, true, nil
}

func (a *Acquirer) acquireFromService(ctx context.Context, att *attempt) (*token.Result, error) {
	f := att.flow

	var (
		result *token.Result
		err    error
	)
	switch {
	case f.useBroker(a, att):
		result, err = a.invokeBroker(ctx, att)
	default:
		if err := f.preTokenRequest(ctx, a, att); err != nil {
			return nil, err
		}
		if f.brokerInvocationRequired(att) {
			result, err = a.invokeBroker(ctx, att)
			break
		}
		var req oauthmodel.TokenRequest
		if req, err = f.tokenRequest(att); err == nil {
			result, err = a.redeem(ctx, att, req)
		}
	}
	if err != nil {
		return nil, err
	}
	if err := f.postTokenRequest(att, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *Acquirer) invokeBroker(ctx context.Context, att *attempt) (*token.Result, error) {
	att.logger.Debug().Strs("broker_keys", att.brokerParams.Keys()).Msg("invoking broker")
	result, err := a.broker.Acquire(ctx, att.brokerParams)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, oauthmodel.NewError(oauthmodel.CodeServiceError, "broker returned no result")
	}
	att.authorityOverride = result.Authority
	return result, nil
}

// redeem sends req to the token endpoint of the attempt's current authority.
func (a *Acquirer) redeem(ctx context.Context, att *attempt, req oauthmodel.TokenRequest) (*token.Result, error) {
	endpoints, err := a.resolver.Resolve(ctx, att.authority)
	if err != nil {
		return nil, errors.Wrap(err, "[redeem] resolving endpoints")
	}
	resp, err := a.exchanger.Exchange(ctx, endpoints.TokenURL, req)
	if err != nil {
		return nil, err
	}
	return token.FromResponse(resp, a.nowTime())
}

// refresh redeems the cached refresh token. The returned result keeps the cached refresh token
// and identity when the response omits them.
func (a *Acquirer) refresh(ctx context.Context, att *attempt, cached *token.Result) (*token.Result, error) {
	req := oauthmodel.TokenRequest{
		GrantType:     oauth2.RefreshTokenGrant,
		ClientID:      att.req.Client.ID,
		ClientSecret:  att.req.Client.Secret,
		Resource:      att.req.Resource,
		RefreshToken:  cached.RefreshToken,
		CorrelationID: att.correlationID,
	}
	result, err := a.redeem(ctx, att, req)
	if err != nil {
		return nil, err
	}
	if result.RefreshToken == "" {
		result.RefreshToken = cached.RefreshToken
	}
	if result.UserInfo == nil && cached.UserInfo != nil {
		result.UserInfo = cached.Clone().UserInfo
		result.TenantID = cached.TenantID
		result.IDToken = cached.IDToken
	}
	return result, nil
}

// complete stores a freshly acquired result and post-processes it.
func (a *Acquirer) complete(ctx context.Context, att *attempt, result *token.Result) (*token.Result, error) {
	if result.Resource == "" {
		result.Resource = att.req.Resource
	}
	if result.Authority == "" {
		result.Authority = att.authority.URI
	}
	a.store(ctx, att, result)
	if err := a.postProcess(att, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (a *Acquirer) lookup(ctx context.Context, att *attempt) (*token.Result, error) {
	a.notifyBefore(ctx, att)
	cached, err := att.req.Cache.Lookup(ctx, token.CacheQuery{
		Key:                     att.cacheKey,
		ExtendedLifetimeEnabled: att.req.ExtendedLifetimeEnabled,
	})
	if err != nil {
		return nil, errors.Wrap(err, "[lookup] token cache")
	}
	if cached != nil {
		att.logger.Debug().
			Bool("has_access_token", cached.HasAccessToken()).
			Bool("extended_lifetime", cached.ExtendedLifetime).
			Msg("cache hit")
	}
	return cached, nil
}

// store writes result to the cache. A failed write is logged and does not fail the acquisition.
func (a *Acquirer) store(ctx context.Context, att *attempt, result *token.Result) {
	if !att.req.writesCache() {
		return
	}
	a.notifyBefore(ctx, att)
	if err := att.req.Cache.Store(ctx, att.cacheKey, result); err != nil {
		att.logger.Warn().Err(err).Msg("storing token in cache failed")
	}
}

// postProcess applies what the service told us about the authority and logs the receipt.
func (a *Acquirer) postProcess(att *attempt, result *token.Result) error {
	if att.authorityOverride != "" {
		changed, err := att.authority.Update(att.authorityOverride)
		if err != nil {
			return err
		}
		if changed {
			if err := att.authority.Validate(att.flow.authorityTypes()...); err != nil {
				return err
			}
		}
	}
	att.authority.UpdateTenantID(result.TenantID)
	result.Authority = att.authority.URI

	att.logger.Info().
		Str("token_authority", result.Authority).
		Str("token_hash", token.Hash(result.AccessToken)).
		Time("expires_on", result.ExpiresOn).
		Bool("extended_lifetime", result.ExtendedLifetime).
		Msg("token received")
	return nil
}

func (a *Acquirer) notifyBefore(ctx context.Context, att *attempt) {
	if att.notified || att.req.Cache == nil {
		return
	}
	att.notified = true
	att.req.Cache.BeforeAccess(ctx, notificationArgs(att.req))
}

func (a *Acquirer) notifyAfter(ctx context.Context, att *attempt) {
	if !att.notified {
		return
	}
	att.req.Cache.AfterAccess(ctx, notificationArgs(att.req))
}

func notificationArgs(req Request) token.NotificationArgs {
	args := token.NotificationArgs{
		Resource: req.Resource,
		ClientID: req.Client.ID,
	}
	switch req.User.Type {
	case users.UniqueID:
		args.UniqueID = req.User.ID
	case users.OptionalDisplayableID, users.RequiredDisplayableID:
		args.DisplayableID = req.User.ID
	}
	return args
}
