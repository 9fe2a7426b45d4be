package config

type OAuthConfig interface {
	GetDefaultScopes() []string
	GetSandboxID() string
	GetSpartanAudience() string
	GetSpartanMinVersion() string
}

type OAuth struct{}

var _ OAuthConfig = OAuth{}

// GetDefaultScopes returns the scopes requested when the caller supplies none.
func (OAuth) GetDefaultScopes() []string {
	return []string{"Xboxlive.signin", "Xboxlive.offline_access"}
}

func (OAuth) GetSandboxID() string {
	return "RETAIL"
}

func (OAuth) GetSpartanAudience() string {
	return "urn:343:s3:services"
}

func (OAuth) GetSpartanMinVersion() string {
	return "4"
}
