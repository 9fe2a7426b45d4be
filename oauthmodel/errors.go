package oauthmodel

import "errors"

var (
	ErrMissingRedirectURI   = errors.New("redirect uri required")
	ErrMissingCode          = errors.New("authorization code required")
	ErrMissingRefreshToken  = errors.New("refresh token required")
	ErrUnsupportedGrantType = errors.New("unsupported grant type")
)
