package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-haloinfinite/config"
	"github.com/jrsteele09/go-haloinfinite/oauthmodel"
	"github.com/jrsteele09/go-haloinfinite/token"
	"github.com/jrsteele09/go-haloinfinite/transport"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Transport performs a single request; *transport.Client implements it.
type Transport interface {
	Do(ctx context.Context, req transport.Request) (*transport.Response, error)
}

// Authenticator issues one request per hop of the sign-in chain:
//
//	Microsoft account -> Xbox user token -> XSTS (Xbox Live, Halo) -> Spartan token -> clearance
//
// Each hop reads its prerequisite from the store and fails with a
// *PreconditionError, without touching the network, when it is unset or
// expired. Results are never stored here; callers decode the response and
// call the matching token.Store setter before moving to the next hop.
type Authenticator struct {
	creds     config.Credentials
	endpoints config.Endpoints
	oauth     config.OAuthConfig
	store     *token.Store
	transport Transport
}

// AuthenticatorOption defines a function type to modify the Authenticator instance.
type AuthenticatorOption func(*Authenticator)

// WithEndpoints overrides the production endpoint table.
func WithEndpoints(e config.Endpoints) AuthenticatorOption {
	return func(a *Authenticator) {
		a.endpoints = e
	}
}

// WithOAuthConfig overrides the default scopes, sandbox and Spartan audience.
func WithOAuthConfig(c config.OAuthConfig) AuthenticatorOption {
	return func(a *Authenticator) {
		a.oauth = c
	}
}

// NewAuthenticator validates the application credentials and wires the
// store and transport the hops use.
func NewAuthenticator(creds config.Credentials, store *token.Store, tr Transport, options ...AuthenticatorOption) (*Authenticator, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	a := &Authenticator{
		creds:     creds,
		endpoints: config.DefaultEndpoints(),
		oauth:     config.OAuth{},
		store:     store,
		transport: tr,
	}
	for _, opt := range options {
		opt(a)
	}
	return a, nil
}

// AuthorizationURL returns the Microsoft account sign-in URL. Nil or empty
// scopes fall back to the default Xbox Live scopes; an empty state is left out.
// An empty redirectURI falls back to the one in the credentials.
func (a *Authenticator) AuthorizationURL(redirectURI string, scopes []string, state string) string {
	if len(scopes) == 0 {
		scopes = a.oauth.GetDefaultScopes()
	}
	if redirectURI == "" {
		redirectURI = a.creds.RedirectURI
	}
	cfg := a.oauth2Config(redirectURI, scopes)
	return cfg.AuthCodeURL(state, oauth2.SetAuthURLParam("approval_prompt", oauthmodel.ApprovalPromptAuto))
}

// NewState returns a random value suitable for the state parameter.
func (a *Authenticator) NewState() string {
	return uuid.NewString()
}

// ExchangeCode trades the authorization code for a UserToken response. As
// with Refresh, an empty redirectURI falls back to the one in the credentials.
func (a *Authenticator) ExchangeCode(ctx context.Context, redirectURI, code string) (*transport.Response, error) {
	return a.requestUserToken(ctx, oauthmodel.TokenRequest{
		RedirectURI: redirectURI,
		GrantType:   oauthmodel.AuthorizationCodeGrant,
		Code:        code,
	})
}

// Refresh trades a refresh token for a new UserToken response.
func (a *Authenticator) Refresh(ctx context.Context, redirectURI, refreshToken string) (*transport.Response, error) {
	return a.requestUserToken(ctx, oauthmodel.TokenRequest{
		RedirectURI:  redirectURI,
		GrantType:    oauthmodel.RefreshTokenGrant,
		RefreshToken: refreshToken,
	})
}

// AcquireXboxUserToken requires a UserToken.
func (a *Authenticator) AcquireXboxUserToken(ctx context.Context) (*transport.Response, error) {
	user, err := a.store.UserToken()
	if err != nil {
		return nil, Guard(err)
	}

	log.Debug().Msg("requesting xbox user token")
	return a.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    a.endpoints.XboxUser,
		JSON:   oauthmodel.NewXboxUserRequest(user.AccessToken),
	})
}

// AcquireXstsXboxToken requires an XboxUserToken. The response carries the
// xuid used by the clearance and match calls.
func (a *Authenticator) AcquireXstsXboxToken(ctx context.Context) (*transport.Response, error) {
	return a.acquireXSTSToken(ctx, oauthmodel.XboxLiveRelyingParty)
}

// AcquireXstsHaloToken requires an XboxUserToken.
func (a *Authenticator) AcquireXstsHaloToken(ctx context.Context) (*transport.Response, error) {
	return a.acquireXSTSToken(ctx, oauthmodel.HaloRelyingParty)
}

// AcquireSpartanToken requires an XstsHaloToken.
func (a *Authenticator) AcquireSpartanToken(ctx context.Context) (*transport.Response, error) {
	xsts, err := a.store.XstsHaloToken()
	if err != nil {
		return nil, Guard(err)
	}

	log.Debug().Msg("requesting spartan token")
	return a.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    a.endpoints.Spartan,
		JSON:   oauthmodel.NewSpartanTokenRequest(a.oauth.GetSpartanAudience(), a.oauth.GetSpartanMinVersion(), xsts.Token),
	})
}

// AcquireClearanceToken requires a SpartanToken and an XstsXboxToken for the xuid.
func (a *Authenticator) AcquireClearanceToken(ctx context.Context) (*transport.Response, error) {
	spartan, err := a.store.SpartanToken()
	if err != nil {
		return nil, Guard(err)
	}
	xuid, err := a.store.XboxUserID()
	if err != nil {
		return nil, Guard(err)
	}

	log.Debug().Str("xuid", xuid).Msg("requesting clearance")
	return a.transport.Do(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    a.endpoints.ClearanceURL(xuid),
		Header: map[string]string{transport.HeaderSpartanToken: spartan.SpartanToken},
	})
}

func (a *Authenticator) acquireXSTSToken(ctx context.Context, relyingParty string) (*transport.Response, error) {
	xboxUser, err := a.store.XboxUserToken()
	if err != nil {
		return nil, Guard(err)
	}

	log.Debug().Str("relying_party", relyingParty).Msg("requesting xsts token")
	return a.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    a.endpoints.XSTS,
		JSON:   oauthmodel.NewXSTSRequest(a.oauth.GetSandboxID(), xboxUser.Token, relyingParty),
	})
}

func (a *Authenticator) requestUserToken(ctx context.Context, req oauthmodel.TokenRequest) (*transport.Response, error) {
	req.ClientID = a.creds.ClientID
	req.ClientSecret = a.creds.ClientSecret
	if req.RedirectURI == "" {
		req.RedirectURI = a.creds.RedirectURI
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	log.Debug().Str("grant_type", string(req.GrantType)).Msg("requesting user token")
	return a.transport.Do(ctx, transport.Request{
		Method: http.MethodPost,
		URL:    a.endpoints.Token,
		Form:   req.Form(),
	})
}

func (a *Authenticator) oauth2Config(redirectURI string, scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     a.creds.ClientID,
		ClientSecret: a.creds.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:   a.endpoints.Authorize,
			TokenURL:  a.endpoints.Token,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}
