package config

import "time"

type Config interface {
	EnvConfig
	OAuthConfig
	EndpointConfig
}

type EnvConfig interface {
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetAppName() string
	GetLogLevel() string
	GetHTTPTimeout() time.Duration
}

type EndpointConfig interface {
	GetEndpoints() Endpoints
}

type mainConfig struct {
	EnvVars
	OAuth
	endpoints Endpoints
}

func New() Config {
	return mainConfig{endpoints: DefaultEndpoints()}
}

func (c mainConfig) GetEndpoints() Endpoints {
	return c.endpoints
}

// CredentialsFrom reads the application registration out of a Config.
func CredentialsFrom(c EnvConfig) Credentials {
	return Credentials{
		ClientID:     c.GetClientID(),
		ClientSecret: c.GetClientSecret(),
		RedirectURI:  c.GetRedirectURI(),
	}
}
