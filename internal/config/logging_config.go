package config

const (
	logLevelVar  = "AUTH_LOG_LEVEL"
	logFormatVar = "AUTH_LOG_FORMAT"
	logFileVar   = "AUTH_LOG_FILE"
)

type Logging struct{}

var _ LoggingConfig = Logging{}

func (Logging) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetLogFormat is "console" or "json".
func (Logging) GetLogFormat() string {
	return GetEnv(logFormatVar, "console")
}

func (Logging) GetLogFile() string {
	return GetEnv(logFileVar, "")
}
