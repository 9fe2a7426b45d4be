package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoints is the fixed table of remote services the token chain talks to.
type Endpoints struct {
	Authorize string // Microsoft account authorize page
	Token     string // Microsoft account token endpoint (code exchange and refresh)
	XboxUser  string // Xbox Live user authentication
	XSTS      string // Xbox secure token service
	Spartan   string // Halo Waypoint Spartan token
	// Clearance holds a single %s verb for the xuid.
	Clearance string
	Settings  string
	StatsBase string // trailing slash required
	SkillBase string // trailing slash required
}

var defaultEndpoints = Endpoints{
	Authorize: "https://login.live.com/oauth20_authorize.srf",
	Token:     "https://login.live.com/oauth20_token.srf",
	XboxUser:  "https://user.auth.xboxlive.com/user/authenticate",
	XSTS:      "https://xsts.auth.xboxlive.com/xsts/authorize",
	Spartan:   "https://settings.svc.halowaypoint.com/spartan-token",
	Clearance: "https://settings.svc.halowaypoint.com/oban/flight-configurations/titles/hi/audiences/RETAIL/players/xuid(%s)/active?sandbox=UNUSED&build=210921.22.01.10.1706-0",
	Settings:  "https://settings.svc.halowaypoint.com/settings/hipc/e2a0a7c6-6efe-42af-9283-c2ab73250c48",
	StatsBase: "https://halostats.svc.halowaypoint.com/hi/",
	SkillBase: "https://skill.svc.halowaypoint.com/hi/",
}

// DefaultEndpoints returns a copy of the production endpoint table.
func DefaultEndpoints() Endpoints {
	return defaultEndpoints
}

// ClearanceURL fills the clearance template with the path-escaped xuid.
func (e Endpoints) ClearanceURL(xuid string) string {
	return fmt.Sprintf(e.Clearance, url.PathEscape(xuid))
}

// WithBaseURL returns a copy of e with the scheme and host of every endpoint
// replaced by those of base. Paths and queries are kept, which lets a single
// local server stand in for every remote service.
func (e Endpoints) WithBaseURL(base string) (Endpoints, error) {
	b, err := url.Parse(base)
	if err != nil {
		return Endpoints{}, fmt.Errorf("parse base url: %w", err)
	}
	if b.Scheme == "" || b.Host == "" {
		return Endpoints{}, fmt.Errorf("base url %q must be absolute", base)
	}

	fields := []*string{&e.Authorize, &e.Token, &e.XboxUser, &e.XSTS, &e.Spartan, &e.Clearance, &e.Settings, &e.StatsBase, &e.SkillBase}
	for _, f := range fields {
		// the clearance template is not a parseable URL, so only the
		// authority is swapped
		rest := strings.SplitN(*f, "://", 2)
		if len(rest) != 2 {
			return Endpoints{}, fmt.Errorf("endpoint %q has no scheme", *f)
		}
		path := ""
		if i := strings.Index(rest[1], "/"); i >= 0 {
			path = rest[1][i:]
		}
		*f = b.Scheme + "://" + b.Host + path
	}
	return e, nil
}
