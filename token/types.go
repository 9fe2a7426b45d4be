package token

import (
	"encoding/json"
	"time"

	"golang.org/x/oauth2"
)

// UserToken is the Microsoft account token endpoint response.
// See https://learn.microsoft.com/en-us/azure/active-directory/develop/v2-oauth2-auth-code-flow
type UserToken struct {
	TokenType string `json:"token_type,omitempty"`
	// ExpiresIn is informational only; the store never invalidates a UserToken.
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	UserID       string `json:"user_id,omitempty"`
}

// OAuth2 converts the token for use with golang.org/x/oauth2 based code.
// issuedAt anchors ExpiresIn; pass the zero time to leave Expiry unset.
func (t UserToken) OAuth2(issuedAt time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if !issuedAt.IsZero() && t.ExpiresIn > 0 {
		tok.Expiry = issuedAt.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok.WithExtra(map[string]any{"scope": t.Scope, "user_id": t.UserID})
}

// XboxToken is the shape shared by the Xbox Live user token and both XSTS
// tokens.
type XboxToken struct {
	IssueInstant  string        `json:"IssueInstant,omitempty"`
	NotAfter      string        `json:"NotAfter"`
	Token         string        `json:"Token"`
	DisplayClaims DisplayClaims `json:"DisplayClaims"`
}

type DisplayClaims struct {
	Xui []XboxUserClaims `json:"xui"`
}

// XboxUserClaims is one entry of the xui claim list. Xid and the profile
// claims are only populated on XSTS tokens issued for http://xboxlive.com.
type XboxUserClaims struct {
	Uhs string `json:"uhs,omitempty"` // user hash
	Xid string `json:"xid,omitempty"` // xuid
	Gtg string `json:"gtg,omitempty"` // gamertag
	Agg string `json:"agg,omitempty"` // age group
	Prv string `json:"prv,omitempty"` // privileges
	Usr string `json:"usr,omitempty"`
	Utr string `json:"utr,omitempty"`
}

type SpartanExpiry struct {
	ISO8601Date string `json:"ISO8601Date"`
}

// SpartanToken is the Halo Waypoint settings service response.
type SpartanToken struct {
	SpartanToken  string        `json:"SpartanToken"`
	ExpiresUtc    SpartanExpiry `json:"ExpiresUtc"`
	TokenDuration string        `json:"TokenDuration,omitempty"`
}

// ClearanceToken is the active flight configuration for a player. Older
// callers call the same identifier the "clearance id".
type ClearanceToken struct {
	FlightConfigurationID string `json:"FlightConfigurationId"`
}

// ClearanceID is an alias for FlightConfigurationID.
func (c ClearanceToken) ClearanceID() string {
	return c.FlightConfigurationID
}

// Snapshot is a copy of every slot. Nil fields are unset slots. The store
// never persists a snapshot; callers may serialize it themselves.
type Snapshot struct {
	User      *UserToken      `json:"user_token,omitempty"`
	XboxUser  *XboxToken      `json:"xbox_user_token,omitempty"`
	XstsXbox  *XboxToken      `json:"xsts_xbox_token,omitempty"`
	XstsHalo  *XboxToken      `json:"xsts_halo_token,omitempty"`
	Spartan   *SpartanToken   `json:"spartan_token,omitempty"`
	Clearance *ClearanceToken `json:"clearance_token,omitempty"`
}

// UnmarshalJSON also accepts the legacy "clearance_id" key for the
// clearance slot.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var aux struct {
		plain
		ClearanceID *ClearanceToken `json:"clearance_id,omitempty"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Snapshot(aux.plain)
	if s.Clearance == nil {
		s.Clearance = aux.ClearanceID
	}
	return nil
}
