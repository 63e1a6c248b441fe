package config

import "time"

type Config interface {
	EnvConfig
	AcquisitionConfig
	LoggingConfig
}

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
}

// AcquisitionConfig holds the defaults of a token acquisition. Command line flags override them.
type AcquisitionConfig interface {
	GetAuthority() string
	GetClientID() string
	GetClientSecret() string
	GetResource() string
	GetRedirectURI() string
	GetCallbackHost() string
	GetHTTPTimeout() time.Duration
	GetInteractiveTimeout() time.Duration
}

type LoggingConfig interface {
	GetLogLevel() string
	GetLogFormat() string
	GetLogFile() string
}

type mainConfig struct {
	EnvVars
	Acquisition
	Logging
}

// New loads a .env file from the working directory, when there is one, and returns the
// environment backed configuration.
func New() Config {
	Load()
	return mainConfig{}
}
