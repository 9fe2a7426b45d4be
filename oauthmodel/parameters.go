package oauthmodel

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges the code returned to the redirect URI.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant trades a refresh_token for a new access token.
	RefreshTokenGrant GrantType = "refresh_token"
)

// ApprovalPromptAuto lets the Microsoft account page skip the consent screen
// when the user has already consented.
const ApprovalPromptAuto = "auto"
