package config

import "time"

const (
	authorityVar          = "AUTH_AUTHORITY"
	clientIDVar           = "AUTH_CLIENT_ID"
	clientSecretVar       = "AUTH_CLIENT_SECRET"
	resourceVar           = "AUTH_RESOURCE"
	redirectURIVar        = "AUTH_REDIRECT_URI"
	callbackHostVar       = "AUTH_CALLBACK_HOST"
	httpTimeoutVar        = "AUTH_HTTP_TIMEOUT"
	interactiveTimeoutVar = "AUTH_INTERACTIVE_TIMEOUT"
)

type Acquisition struct{}

var _ AcquisitionConfig = Acquisition{}

func (Acquisition) GetAuthority() string {
	return GetEnv(authorityVar, "https://login.microsoftonline.com/common")
}

func (Acquisition) GetClientID() string {
	return GetEnv(clientIDVar, "")
}

func (Acquisition) GetClientSecret() string {
	return GetEnv(clientSecretVar, "")
}

func (Acquisition) GetResource() string {
	return GetEnv(resourceVar, "")
}

// GetRedirectURI returns the configured redirect URI, or a loopback URI on the callback host.
func (a Acquisition) GetRedirectURI() string {
	return GetEnv(redirectURIVar, "http://"+a.GetCallbackHost()+"/")
}

func (Acquisition) GetCallbackHost() string {
	return GetEnv(callbackHostVar, "localhost:8400")
}

func (Acquisition) GetHTTPTimeout() time.Duration {
	return GetEnvDuration(httpTimeoutVar, 30*time.Second)
}

// GetInteractiveTimeout bounds how long the user has to complete a sign-in.
func (Acquisition) GetInteractiveTimeout() time.Duration {
	return GetEnvDuration(interactiveTimeoutVar, 5*time.Minute)
}
