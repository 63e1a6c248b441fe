package auth

import (
	"context"
	"runtime"
	"time"

	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/broker"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/webui"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Version is reported to the service and to the broker as the client version.
const Version = "1.0.0"

// DefaultRedirectURI is used by interactive acquisitions that do not name a redirect URI.
const DefaultRedirectURI = "http://localhost:8400/"

// TokenExchanger redeems a grant at the token endpoint.
type TokenExchanger interface {
	Exchange(ctx context.Context, tokenEndpoint string, req oauthmodel.TokenRequest) (*oauth2.TokenResponse, error)
}

// Platform supplies host specific defaults.
type Platform interface {
	DefaultRedirectURI(clientID string) string
	// TelemetryParameters are added to every authorization request.
	TelemetryParameters() map[string]string
	ClientVersion() string
}

// DefaultPlatform reports the Go runtime and a loopback redirect URI.
type DefaultPlatform struct{}

var _ Platform = DefaultPlatform{}

func (DefaultPlatform) DefaultRedirectURI(string) string {
	return DefaultRedirectURI
}

func (DefaultPlatform) TelemetryParameters() map[string]string {
	return map[string]string{
		"x-client-SKU": "Go",
		"x-client-Ver": Version,
		"x-client-OS":  runtime.GOOS,
	}
}

func (DefaultPlatform) ClientVersion() string {
	return Version
}

// Acquirer acquires tokens: from the cache, by refresh, through a broker, or interactively.
type Acquirer struct {
	exchanger TokenExchanger
	resolver  authority.Resolver
	broker    broker.Broker
	webUI     webui.WebUI
	execCtx   webui.ExecutionContext
	platform  Platform
	logger    zerolog.Logger
	nowTime   func() time.Time
}

// Option configures an Acquirer.
type Option func(*Acquirer)

func WithBroker(b broker.Broker) Option {
	return func(a *Acquirer) {
		a.broker = b
	}
}

// WithWebUI sets the surface used by interactive acquisitions.
func WithWebUI(ui webui.WebUI) Option {
	return func(a *Acquirer) {
		a.webUI = ui
	}
}

// WithExecutionContext makes the WebUI challenge run on ec instead of a dedicated goroutine.
func WithExecutionContext(ec webui.ExecutionContext) Option {
	return func(a *Acquirer) {
		a.execCtx = ec
	}
}

func WithPlatform(p Platform) Option {
	return func(a *Acquirer) {
		a.platform = p
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *Acquirer) {
		a.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(a *Acquirer) {
		a.nowTime = nowFunc
	}
}

// WithAuthorityResolver replaces the endpoint resolver, e.g. with authority.NewOIDCResolver().
func WithAuthorityResolver(r authority.Resolver) Option {
	return func(a *Acquirer) {
		a.resolver = r
	}
}

// New creates an Acquirer that redeems grants through exchanger.
func New(exchanger TokenExchanger, options ...Option) (*Acquirer, error) {
	if exchanger == nil {
		return nil, errors.New("[New] token exchanger is required")
	}

	a := &Acquirer{
		exchanger: exchanger,
		resolver:  authority.StaticResolver{},
		broker:    broker.None{},
		platform:  DefaultPlatform{},
		logger:    log.Logger,
		nowTime:   time.Now,
	}
	for _, opt := range options {
		opt(a)
	}

	if a.resolver == nil {
		return nil, errors.New("[New] authority resolver is required")
	}
	if a.broker == nil {
		a.broker = broker.None{}
	}
	if a.platform == nil {
		a.platform = DefaultPlatform{}
	}
	return a, nil
}

// AcquireTokenSilent returns a token from the cache or by refreshing a cached refresh token. It
// fails with UserInteractionRequired when neither is possible.
func (a *Acquirer) AcquireTokenSilent(ctx context.Context, req Request) (*token.Result, error) {
	return a.acquire(ctx, req, silentFlow{})
}

// AcquireTokenInteractive returns a cached or refreshed token when possible and otherwise signs
// the user in through the broker or the WebUI.
func (a *Acquirer) AcquireTokenInteractive(ctx context.Context, req Request) (*token.Result, error) {
	if a.webUI == nil && !a.broker.CanInvoke() {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "interactive acquisition needs a WebUI or a broker")
	}
	return a.acquire(ctx, req, interactiveFlow{})
}

// AcquireTokenByBroker delegates acquisition to the platform broker.
func (a *Acquirer) AcquireTokenByBroker(ctx context.Context, req Request) (*token.Result, error) {
	if !a.broker.CanInvoke() {
		return nil, oauthmodel.NewError(oauthmodel.CodeBrokerUnavailable, "the platform broker cannot be invoked")
	}
	return a.acquire(ctx, req, brokerFlow{})
}

// AuthorizationURL previews the authorization URL an interactive acquisition would open. The
// preview carries neither state nor a PKCE challenge, so it cannot be redeemed.
func (a *Acquirer) AuthorizationURL(ctx context.Context, req Request) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}
	target, err := authority.New(req.Authority)
	if err != nil {
		return "", err
	}
	if err := target.Validate(interactiveFlow{}.authorityTypes()...); err != nil {
		return "", err
	}
	att := &attempt{
		req:           req,
		authority:     target,
		correlationID: req.CorrelationID,
		redirectURI:   a.redirectURI(req),
	}
	ar, err := a.authorizationRequest(att, "", "")
	if err != nil {
		return "", err
	}
	endpoints, err := a.resolver.Resolve(ctx, target)
	if err != nil {
		return "", errors.Wrap(err, "[AuthorizationURL] resolving endpoints")
	}
	u, err := ar.URL(endpoints.AuthorizationURL)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
