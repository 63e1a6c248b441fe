package broker

import (
	"context"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-auth-client/oauthmodel"
	"github.com/jrsteele09/go-auth-client/token"
)

// InstallScheme prefixes an authorization "code" that is really an instruction to hand the
// request over to the broker application.
const InstallScheme = "msauth://"

// Broker is a platform authentication broker application.
type Broker interface {
	// CanInvoke reports whether the broker is installed and willing to serve requests.
	CanInvoke() bool
	Acquire(ctx context.Context, params Parameters) (*token.Result, error)
}

// None is the broker used when the platform has no broker.
type None struct{}

var _ Broker = None{}

func (None) CanInvoke() bool {
	return false
}

func (None) Acquire(context.Context, Parameters) (*token.Result, error) {
	return nil, oauthmodel.NewError(oauthmodel.CodeBrokerUnavailable, "no broker is available on this platform")
}

// IsInstallRedirect reports whether an authorization code is a broker invocation URI.
func IsInstallRedirect(code string) bool {
	return len(code) >= len(InstallScheme) && strings.EqualFold(code[:len(InstallScheme)], InstallScheme)
}

// InstallRedirect is the parsed broker invocation URI.
type InstallRedirect struct {
	// URL is the full invocation URI, passed to the broker as broker_install_url.
	URL      string
	Username string
}

// ParseInstallRedirect extracts the username query parameter from a broker invocation URI.
func ParseInstallRedirect(code string) (*InstallRedirect, error) {
	if !IsInstallRedirect(code) {
		return nil, oauthmodel.NewError(oauthmodel.CodeInvalidRequest, "not a broker invocation uri")
	}
	u, err := url.Parse(code)
	if err != nil {
		return nil, oauthmodel.WrapError(oauthmodel.CodeInvalidRequest, "malformed broker invocation uri", err)
	}
	return &InstallRedirect{
		URL:      code,
		Username: u.Query().Get(KeyUsername),
	}, nil
}
