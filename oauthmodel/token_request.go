package oauthmodel

import "net/url"

// TokenRequest holds parameters for the Microsoft account token request.
// This represents the form body POSTed to oauth20_token.srf.
// Supports two grant types: authorization_code and refresh_token
type TokenRequest struct {
	// ClientID identifies the Azure application making the request.
	// Required: Yes (for all grant types)
	ClientID string

	// ClientSecret is the secret credential of the Azure application.
	// Required: Yes
	// Security: Never log or expose this value
	ClientSecret string

	// RedirectURI must be the one used on the authorize request.
	// Required: Yes
	RedirectURI string

	// GrantType selects which of Code or RefreshToken is sent.
	// Required: Yes
	GrantType GrantType

	// Code is the authorization code received on the redirect URI.
	// Required: Yes (only for authorization_code grant)
	// Example: "M.R3_BAY.2a3b..."
	// Usage: Exchanged once for tokens, then becomes invalid
	Code string

	// RefreshToken is used to obtain a new access token without signing in again.
	// Required: Yes (only for refresh_token grant)
	// Behavior: Microsoft rotates it - keep the one returned by the refresh
	RefreshToken string
}

func (r TokenRequest) Validate() error {
	if r.RedirectURI == "" {
		return ErrMissingRedirectURI
	}
	switch r.GrantType {
	case AuthorizationCodeGrant:
		if r.Code == "" {
			return ErrMissingCode
		}
	case RefreshTokenGrant:
		if r.RefreshToken == "" {
			return ErrMissingRefreshToken
		}
	default:
		return ErrUnsupportedGrantType
	}
	return nil
}

// Form encodes the request as the token endpoint expects it.
func (r TokenRequest) Form() url.Values {
	form := url.Values{
		"client_id":     {r.ClientID},
		"client_secret": {r.ClientSecret},
		"redirect_uri":  {r.RedirectURI},
		"grant_type":    {string(r.GrantType)},
	}
	switch r.GrantType {
	case AuthorizationCodeGrant:
		form.Set("code", r.Code)
	case RefreshTokenGrant:
		form.Set("refresh_token", r.RefreshToken)
	}
	return form
}
