// Package match queries the Halo Infinite stats and skill services with the
// Spartan token held in a token.Store.
package match

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jrsteele09/go-haloinfinite/auth"
	"github.com/jrsteele09/go-haloinfinite/config"
	"github.com/jrsteele09/go-haloinfinite/token"
	"github.com/jrsteele09/go-haloinfinite/transport"
)

// Service issues the read-only match queries. Every query needs a fresh
// Spartan token in the store; player queries also need the xuid.
type Service struct {
	endpoints config.Endpoints
	store     *token.Store
	transport auth.Transport
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithEndpoints overrides the production endpoint table.
func WithEndpoints(e config.Endpoints) ServiceOption {
	return func(s *Service) {
		s.endpoints = e
	}
}

// NewService reads tokens from store and sends every query through tr.
func NewService(store *token.Store, tr auth.Transport, options ...ServiceOption) *Service {
	s := &Service{
		endpoints: config.DefaultEndpoints(),
		store:     store,
		transport: tr,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Privacy returns the match history privacy settings of the signed-in player.
func (s *Service) Privacy(ctx context.Context) (*transport.Response, error) {
	return s.getForPlayer(ctx, "matches-privacy")
}

// Count returns the signed-in player's match counts.
func (s *Service) Count(ctx context.Context) (*transport.Response, error) {
	return s.getForPlayer(ctx, "matches/count")
}

// History returns the signed-in player's most recent matches.
func (s *Service) History(ctx context.Context) (*transport.Response, error) {
	return s.getForPlayer(ctx, "matches")
}

// Progression returns the signed-in player's progression for one match.
// Unlike the other player queries it checks the xuid before the Spartan token.
func (s *Service) Progression(ctx context.Context, matchID string) (*transport.Response, error) {
	xuid, err := s.store.XboxUserID()
	if err != nil {
		return nil, auth.Guard(err)
	}
	spartan, err := s.store.SpartanToken()
	if err != nil {
		return nil, auth.Guard(err)
	}
	return s.get(ctx, spartan, s.playerURL(xuid, "matches/"+url.PathEscape(matchID)+"/progression"))
}

// Stats returns the stats of any match; no player identity is needed.
func (s *Service) Stats(ctx context.Context, matchID string) (*transport.Response, error) {
	spartan, err := s.store.SpartanToken()
	if err != nil {
		return nil, auth.Guard(err)
	}
	return s.get(ctx, spartan, s.endpoints.StatsBase+"matches/"+url.PathEscape(matchID)+"/stats")
}

// Skill returns the skill results of playerID (an xuid) in one match.
func (s *Service) Skill(ctx context.Context, matchID, playerID string) (*transport.Response, error) {
	spartan, err := s.store.SpartanToken()
	if err != nil {
		return nil, auth.Guard(err)
	}
	u := fmt.Sprintf("%smatches/%s/skill?players=xuid(%s)", s.endpoints.SkillBase, url.PathEscape(matchID), url.QueryEscape(playerID))
	return s.get(ctx, spartan, u)
}

// getForPlayer requires the Spartan token first, then the xuid.
func (s *Service) getForPlayer(ctx context.Context, path string) (*transport.Response, error) {
	spartan, err := s.store.SpartanToken()
	if err != nil {
		return nil, auth.Guard(err)
	}
	xuid, err := s.store.XboxUserID()
	if err != nil {
		return nil, auth.Guard(err)
	}
	return s.get(ctx, spartan, s.playerURL(xuid, path))
}

func (s *Service) playerURL(xuid, path string) string {
	return fmt.Sprintf("%splayers/xuid(%s)/%s", s.endpoints.StatsBase, url.PathEscape(xuid), path)
}

func (s *Service) get(ctx context.Context, spartan token.SpartanToken, u string) (*transport.Response, error) {
	return s.transport.Do(ctx, transport.Request{
		Method: http.MethodGet,
		URL:    u,
		Header: map[string]string{transport.HeaderSpartanToken: spartan.SpartanToken},
	})
}
