package auth

import (
	"context"

	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
)

// flow is what differs between acquisition modes. The orchestrator drives every mode through the
// same states and asks the flow at each decision point.
type flow interface {
	name() string
	authorityTypes() []authority.Type

	// prepare runs during initialization, before the cache or the network is touched.
	prepare(a *Acquirer, att *attempt) error

	// useBroker reports whether acquisition is delegated to the broker outright.
	useBroker(a *Acquirer, att *attempt) bool

	// preTokenRequest runs before the token request is built.
	preTokenRequest(ctx context.Context, a *Acquirer, att *attempt) error

	// brokerInvocationRequired reports whether preTokenRequest handed the exchange to the broker.
	brokerInvocationRequired(att *attempt) bool

	tokenRequest(att *attempt) (oauthmodel.TokenRequest, error)

	postTokenRequest(att *attempt, result *token.Result) error
}

var (
	_ flow = silentFlow{}
	_ flow = interactiveFlow{}
	_ flow = brokerFlow{}
)

// silentFlow never involves the user. When the cache and the refresh token cannot produce a token
// it fails with UserInteractionRequired, or with the refresh error when that was transient.
type silentFlow struct{}

func (silentFlow) name() string { return "silent" }

func (silentFlow) authorityTypes() []authority.Type {
	return []authority.Type{authority.AAD, authority.ADFS}
}

func (silentFlow) prepare(*Acquirer, *attempt) error { return nil }

func (silentFlow) useBroker(*Acquirer, *attempt) bool { return false }

func (silentFlow) preTokenRequest(_ context.Context, _ *Acquirer, att *attempt) error {
	switch oauthmodel.CodeOf(att.refreshErr) {
	case oauthmodel.CodeNetworkUnavailable, oauthmodel.CodeServiceOutage:
		return att.refreshErr
	}
	return oauthmodel.WrapError(oauthmodel.CodeUserInteractionRequired,
		"no token can be acquired without user interaction", att.refreshErr)
}

func (silentFlow) brokerInvocationRequired(*attempt) bool { return false }

func (silentFlow) tokenRequest(*attempt) (oauthmodel.TokenRequest, error) {
	return oauthmodel.TokenRequest{}, oauthmodel.NewError(oauthmodel.CodeUserInteractionRequired, "silent flow has no grant to redeem")
}

func (silentFlow) postTokenRequest(*attempt, *token.Result) error { return nil }

// brokerFlow hands every acquisition that misses the cache to the platform broker. Brokers only
// serve directory authorities.
type brokerFlow struct{}

func (brokerFlow) name() string { return "broker" }

func (brokerFlow) authorityTypes() []authority.Type {
	return []authority.Type{authority.AAD}
}

func (brokerFlow) prepare(*Acquirer, *attempt) error { return nil }

func (brokerFlow) useBroker(*Acquirer, *attempt) bool { return true }

func (brokerFlow) preTokenRequest(context.Context, *Acquirer, *attempt) error { return nil }

func (brokerFlow) brokerInvocationRequired(*attempt) bool { return true }

func (brokerFlow) tokenRequest(*attempt) (oauthmodel.TokenRequest, error) {
	return oauthmodel.TokenRequest{}, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "broker flow has no grant to redeem")
}

func (brokerFlow) postTokenRequest(att *attempt, result *token.Result) error {
	return verifyUser(att.req.User, result)
}
