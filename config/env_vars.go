package config

import (
	"os"
	"time"
)

const (
	clientIDEnvVar     = "HALO_CLIENT_ID"
	clientSecretEnvVar = "HALO_CLIENT_SECRET"
	redirectURIEnvVar  = "HALO_REDIRECT_URI"
	appNameVar         = "HALO_APP_NAME"
	logLevelVar        = "HALO_LOG_LEVEL"
	httpTimeoutVar     = "HALO_HTTP_TIMEOUT"
)

const defaultHTTPTimeout = 30 * time.Second

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetClientID() string {
	return GetEnv(clientIDEnvVar, "")
}

func (EnvVars) GetClientSecret() string {
	return GetEnv(clientSecretEnvVar, "")
}

// GetRedirectURI returns the redirect URI registered for the Azure application.
// It must match the one sent at the authorize step byte for byte.
func (EnvVars) GetRedirectURI() string {
	return GetEnv(redirectURIEnvVar, "http://localhost:8080/callback")
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Halo Auth")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

// GetHTTPTimeout parses HALO_HTTP_TIMEOUT as a Go duration ("15s", "1m").
// Invalid or non-positive values fall back to the default.
func (EnvVars) GetHTTPTimeout() time.Duration {
	d, err := time.ParseDuration(GetEnv(httpTimeoutVar, ""))
	if err != nil || d <= 0 {
		return defaultHTTPTimeout
	}
	return d
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
