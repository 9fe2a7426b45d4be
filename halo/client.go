// Package halo bundles the token store, transport, sign-in chain and match
// queries behind one client, one instance per signed-in player.
package halo

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-haloinfinite/auth"
	"github.com/jrsteele09/go-haloinfinite/config"
	ierrors "github.com/jrsteele09/go-haloinfinite/internal/errors"
	"github.com/jrsteele09/go-haloinfinite/match"
	"github.com/jrsteele09/go-haloinfinite/token"
	"github.com/jrsteele09/go-haloinfinite/transport"
)

// ErrInvalidConfig is returned by NewClient when the credentials do not validate.
var ErrInvalidConfig = ierrors.ErrInvalidConfig

// Client is the entry point for one signed-in player. Auth drives the
// sign-in chain, Match runs queries, and both share the store from Tokens.
type Client struct {
	Auth  *auth.Authenticator
	Match *match.Service

	store     *token.Store
	transport auth.Transport
	endpoints config.Endpoints
}

type clientOptions struct {
	transport auth.Transport
	store     *token.Store
	snapshot  *token.Snapshot
	endpoints config.Endpoints
	oauth     config.OAuthConfig
}

// Option configures NewClient.
type Option func(*clientOptions)

// WithTransport replaces the default transport.Client.
func WithTransport(tr auth.Transport) Option {
	return func(o *clientOptions) {
		o.transport = tr
	}
}

// WithStore shares an existing store instead of creating an empty one.
func WithStore(s *token.Store) Option {
	return func(o *clientOptions) {
		o.store = s
	}
}

// WithSnapshot pre-seeds the client's store with previously exported tokens.
func WithSnapshot(snap token.Snapshot) Option {
	return func(o *clientOptions) {
		o.snapshot = &snap
	}
}

// WithEndpoints overrides the production endpoint table for every component.
func WithEndpoints(e config.Endpoints) Option {
	return func(o *clientOptions) {
		o.endpoints = e
	}
}

// WithOAuthConfig overrides the default scopes, sandbox and Spartan audience.
func WithOAuthConfig(c config.OAuthConfig) Option {
	return func(o *clientOptions) {
		o.oauth = c
	}
}

// NewClient validates creds and wires a store, a transport, an Authenticator
// and a match Service. Invalid credentials fail with ErrInvalidConfig.
func NewClient(creds config.Credentials, options ...Option) (*Client, error) {
	o := clientOptions{
		endpoints: config.DefaultEndpoints(),
		oauth:     config.OAuth{},
	}
	for _, opt := range options {
		opt(&o)
	}
	if o.transport == nil {
		o.transport = transport.New()
	}
	if o.store == nil {
		o.store = token.NewStore()
	}
	if o.snapshot != nil {
		o.store.Restore(*o.snapshot)
	}

	authenticator, err := auth.NewAuthenticator(creds, o.store, o.transport,
		auth.WithEndpoints(o.endpoints),
		auth.WithOAuthConfig(o.oauth),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ierrors.ErrInvalidConfig, err)
	}

	return &Client{
		Auth:      authenticator,
		Match:     match.NewService(o.store, o.transport, match.WithEndpoints(o.endpoints)),
		store:     o.store,
		transport: o.transport,
		endpoints: o.endpoints,
	}, nil
}

// Tokens returns the store the client reads and callers write acquired tokens to.
func (c *Client) Tokens() *token.Store {
	return c.store
}

// Settings fetches the Halo Infinite PC service settings document, which
// lists the service endpoints the game itself uses. No token is required.
func (c *Client) Settings(ctx context.Context) (*transport.Response, error) {
	return c.transport.Do(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    c.endpoints.Settings,
	})
}
