package authority

import (
	"context"
	"strings"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Endpoints are the URLs an acquisition talks to for a given authority.
type Endpoints struct {
	AuthorizationURL string
	TokenURL         string
	Issuer           string
}

// OAuth2Endpoint adapts the endpoints to golang.org/x/oauth2.
func (e Endpoints) OAuth2Endpoint() oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   e.AuthorizationURL,
		TokenURL:  e.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// Resolver maps an authority to its endpoints.
type Resolver interface {
	Resolve(ctx context.Context, a *Authority) (Endpoints, error)
}

// StaticResolver derives the endpoints from the authority URI without a network call.
type StaticResolver struct{}

var _ Resolver = StaticResolver{}

func (StaticResolver) Resolve(_ context.Context, a *Authority) (Endpoints, error) {
	return Endpoints{
		AuthorizationURL: a.AuthorizeEndpoint(),
		TokenURL:         a.TokenEndpoint(),
		Issuer:           a.URI,
	}, nil
}

// OIDCResolver discovers endpoints from the authority's openid-configuration document and
// caches them per authority URI.
type OIDCResolver struct {
	cache  map[string]Endpoints
	lock   sync.RWMutex
	logger zerolog.Logger
}

var _ Resolver = (*OIDCResolver)(nil)

type OIDCResolverOption func(*OIDCResolver)

func WithResolverLogger(logger zerolog.Logger) OIDCResolverOption {
	return func(r *OIDCResolver) {
		r.logger = logger
	}
}

func NewOIDCResolver(opts ...OIDCResolverOption) *OIDCResolver {
	r := &OIDCResolver{
		cache:  make(map[string]Endpoints),
		logger: log.Logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve fetches discovery metadata once per authority. The advertised issuer is not required
// to match the authority URI because tenantless authorities report a templated issuer.
func (r *OIDCResolver) Resolve(ctx context.Context, a *Authority) (Endpoints, error) {
	r.lock.RLock()
	endpoints, exists := r.cache[a.URI]
	r.lock.RUnlock()
	if exists {
		return endpoints, nil
	}

	issuer := strings.TrimSuffix(a.URI, "/")
	provider, err := oidc.NewProvider(oidc.InsecureIssuerURLContext(ctx, issuer), issuer)
	if err != nil {
		return Endpoints{}, errors.Wrap(err, "[OIDCResolver.Resolve] discovery failed for "+a.URI)
	}

	var metadata struct {
		Issuer string `json:"issuer"`
	}
	if err := provider.Claims(&metadata); err != nil {
		return Endpoints{}, errors.Wrap(err, "[OIDCResolver.Resolve] decoding metadata")
	}

	ep := provider.Endpoint()
	endpoints = Endpoints{
		AuthorizationURL: ep.AuthURL,
		TokenURL:         ep.TokenURL,
		Issuer:           metadata.Issuer,
	}
	if endpoints.AuthorizationURL == "" || endpoints.TokenURL == "" {
		return Endpoints{}, errors.New("[OIDCResolver.Resolve] metadata for " + a.URI + " is missing endpoints")
	}

	r.lock.Lock()
	r.cache[a.URI] = endpoints
	r.lock.Unlock()

	r.logger.Debug().
		Str("authority", a.URI).
		Str("token_endpoint", endpoints.TokenURL).
		Msg("authority metadata resolved")
	return endpoints, nil
}
