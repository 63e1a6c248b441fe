package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/broker"
	"github.com/jrsteele09/go-auth-client/oauth2"
	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
	"github.com/jrsteele09/go-auth-client/webui"
	"github.com/pkg/errors"
	xoauth2 "golang.org/x/oauth2"
)

const promptLogin = "login"

// interactiveFlow signs the user in with the authorization code grant and PKCE.
type interactiveFlow struct{}

func (interactiveFlow) name() string { return "interactive" }

func (interactiveFlow) authorityTypes() []authority.Type {
	return []authority.Type{authority.AAD, authority.ADFS}
}

// prepare generates the attempt's state and PKCE verifier and builds the authorization request, so
// a bad redirect URI or a colliding extra parameter fails before any network call.
func (interactiveFlow) prepare(a *Acquirer, att *attempt) error {
	att.state = uuid.NewString()
	att.verifier = xoauth2.GenerateVerifier()

	ar, err := a.authorizationRequest(att, att.state, xoauth2.S256ChallengeFromVerifier(att.verifier))
	if err != nil {
		return err
	}
	att.authorizationRequest = ar
	return nil
}

func (interactiveFlow) useBroker(a *Acquirer, _ *attempt) bool {
	return a.broker.CanInvoke()
}

// preTokenRequest runs the WebUI challenge and validates what came back.
func (f interactiveFlow) preTokenRequest(ctx context.Context, a *Acquirer, att *attempt) error {
	if a.webUI == nil {
		return oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "no WebUI is configured")
	}
	endpoints, err := a.resolver.Resolve(ctx, att.authority)
	if err != nil {
		return errors.Wrap(err, "[interactiveFlow.preTokenRequest] resolving endpoints")
	}
	u, err := att.authorizationRequest.URL(endpoints.AuthorizationURL)
	if err != nil {
		return err
	}

	att.logger.Debug().Str("redirect_uri", att.redirectURI).Msg("starting authorization challenge")
	resp, err := webui.Dispatch(ctx, a.execCtx, a.webUI, u.String(), att.redirectURI)
	if err != nil {
		return err
	}
	if resp == nil {
		return oauthmodel.NewError(oauthmodel.CodeServiceError, "webui returned no authorization response")
	}
	if err := validateAuthorizationResponse(resp, att.state); err != nil {
		return err
	}

	if resp.CloudInstanceHost != "" {
		changed, err := att.authority.UpdateFromCloudInstance(resp.CloudInstanceHost)
		if err != nil {
			return err
		}
		if changed {
			if err := att.authority.Validate(f.authorityTypes()...); err != nil {
				return err
			}
			att.brokerParams = att.brokerParams.With(broker.KeyAuthority, att.authority.URI)
			att.logger.Info().Str("cloud_instance", resp.CloudInstanceHost).Msg("authority moved to cloud instance")
		}
	}

	if broker.IsInstallRedirect(resp.Code) {
		ir, err := broker.ParseInstallRedirect(resp.Code)
		if err != nil {
			return err
		}
		att.brokerParams = att.brokerParams.
			With(broker.KeyUsername, ir.Username).
			With(broker.KeyBrokerInstallURL, ir.URL)
		att.brokerInstall = true
		return nil
	}
	att.authorizationCode = resp.Code
	return nil
}

func (interactiveFlow) brokerInvocationRequired(att *attempt) bool {
	return att.brokerInstall
}

func (interactiveFlow) tokenRequest(att *attempt) (oauthmodel.TokenRequest, error) {
	return oauthmodel.TokenRequest{
		GrantType:     oauth2.AuthorizationCodeGrant,
		ClientID:      att.req.Client.ID,
		ClientSecret:  att.req.Client.Secret,
		Resource:      att.req.Resource,
		Code:          att.authorizationCode,
		RedirectURI:   att.redirectURI,
		CodeVerifier:  att.verifier,
		Claims:        att.req.Claims,
		CorrelationID: att.correlationID,
	}, nil
}

func (interactiveFlow) postTokenRequest(att *attempt, result *token.Result) error {
	return verifyUser(att.req.User, result)
}

// authorizationRequest builds and checks the authorization request of an attempt, including its
// redirect URI. state and challenge are empty on the preview path.
func (a *Acquirer) authorizationRequest(att *attempt, state, challenge string) (*oauthmodel.AuthorizationRequest, error) {
	if _, err := oauthmodel.ParseRedirectURI(att.redirectURI); err != nil {
		return nil, err
	}
	req := att.req
	ar := &oauthmodel.AuthorizationRequest{
		ClientID:             req.Client.ID,
		ResponseType:         oauth2.CodeResponseType,
		Resource:             req.Resource,
		RedirectURI:          att.redirectURI,
		LoginHint:            req.User.LoginHint(),
		Claims:               req.Claims,
		State:                state,
		CorrelationID:        att.correlationID,
		Telemetry:            a.platform.TelemetryParameters(),
		ExtraQueryParameters: req.ExtraQueryParameters,
	}
	if challenge != "" {
		ar.CodeChallenge = challenge
		ar.CodeChallengeMethod = oauth2.CodeMethodTypeS256
	}
	if req.ForcePrompt {
		ar.Prompt = promptLogin
	}
	if _, err := ar.Query(); err != nil {
		return nil, err
	}
	return ar, nil
}
