package main

import (
	"github.com/jrsteele09/go-auth-client/auth"
	"github.com/jrsteele09/go-auth-client/authority"
	"github.com/jrsteele09/go-auth-client/clients"
	"github.com/jrsteele09/go-auth-client/endpoint"
	"github.com/jrsteele09/go-auth-client/internal/config"
	"github.com/jrsteele09/go-auth-client/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// requestFlags are the acquisition flags shared by acquire and authorize-url.
type requestFlags struct {
	authority    string
	clientID     string
	clientSecret string
	resource     string
	redirectURI  string
	user         string
	userType     string
	extraQP      string
	claims       string
	forcePrompt  bool
	discover     bool
}

func (f *requestFlags) register(cmd *cobra.Command, c config.AcquisitionConfig) {
	flags := cmd.Flags()
	flags.StringVar(&f.authority, "authority", c.GetAuthority(), "Authority URL, e.g. https://login.microsoftonline.com/common")
	flags.StringVar(&f.clientID, "client-id", c.GetClientID(), "Application (client) id")
	flags.StringVar(&f.clientSecret, "client-secret", c.GetClientSecret(), "Client secret for confidential clients")
	flags.StringVar(&f.resource, "resource", c.GetResource(), "Resource the token is requested for")
	flags.StringVar(&f.redirectURI, "redirect-uri", c.GetRedirectURI(), "Loopback redirect URI registered for the client")
	flags.StringVar(&f.user, "user", "", "User the token must be issued for")
	flags.StringVar(&f.userType, "user-type", "hint", "How --user is matched: hint, displayable or unique")
	flags.StringVar(&f.extraQP, "extra-query", "", "Extra authorization query parameters, k1=v1&k2=v2")
	flags.StringVar(&f.claims, "claims", "", "Claims challenge to send with the request")
	flags.BoolVar(&f.forcePrompt, "force-prompt", false, "Ignore any existing browser session")
	flags.BoolVar(&f.discover, "discover", false, "Discover endpoints from the authority's OpenID configuration")
}

func (f *requestFlags) identifier() (users.Identifier, error) {
	if f.user == "" {
		return users.AnyUser, nil
	}
	switch f.userType {
	case "hint":
		return users.NewDisplayableID(f.user, false), nil
	case "displayable":
		return users.NewDisplayableID(f.user, true), nil
	case "unique":
		return users.NewUniqueID(f.user), nil
	}
	return users.Identifier{}, errors.Errorf("[identifier] unknown user type %q", f.userType)
}

func (f *requestFlags) request() (auth.Request, error) {
	user, err := f.identifier()
	if err != nil {
		return auth.Request{}, err
	}
	client := clients.NewPublic(f.clientID)
	if f.clientSecret != "" {
		client = clients.NewConfidential(f.clientID, f.clientSecret)
	}
	return auth.Request{
		Authority:            f.authority,
		Resource:             f.resource,
		Client:               client,
		User:                 user,
		RedirectURI:          f.redirectURI,
		ExtraQueryParameters: f.extraQP,
		Claims:               f.claims,
		ForcePrompt:          f.forcePrompt,
	}, nil
}

func (f *requestFlags) acquirerOptions() []auth.Option {
	opts := []auth.Option{auth.WithLogger(log.Logger)}
	if f.discover {
		opts = append(opts, auth.WithAuthorityResolver(authority.NewOIDCResolver(authority.WithResolverLogger(log.Logger))))
	}
	return opts
}

func newExchanger(c config.AcquisitionConfig) *endpoint.Client {
	return endpoint.New(
		endpoint.WithHTTPClient(newHTTPClient(c.GetHTTPTimeout())),
		endpoint.WithLogger(log.Logger),
	)
}
