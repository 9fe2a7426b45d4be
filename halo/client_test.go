package halo_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-haloinfinite/auth"
	"github.com/jrsteele09/go-haloinfinite/config"
	"github.com/jrsteele09/go-haloinfinite/halo"
	"github.com/jrsteele09/go-haloinfinite/internal/fakeservice"
	"github.com/jrsteele09/go-haloinfinite/token"
	"github.com/jrsteele09/go-haloinfinite/transport"
	"github.com/stretchr/testify/require"
)

const (
	testXuid = "2533274800000000"
	future   = "2099-11-19T19:56:31.3445452Z"
)

var testCreds = config.Credentials{ClientID: "client", ClientSecret: "secret", RedirectURI: "http://localhost:8080/callback"}

func newClient(t *testing.T, srv *fakeservice.Server, opts ...halo.Option) *halo.Client {
	t.Helper()
	opts = append([]halo.Option{
		halo.WithEndpoints(srv.Endpoints(t)),
		halo.WithTransport(transport.New(transport.WithTimeout(5 * time.Second))),
	}, opts...)
	c, err := halo.NewClient(testCreds, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient_InvalidCredentials(t *testing.T) {
	_, err := halo.NewClient(config.Credentials{})
	require.ErrorIs(t, err, halo.ErrInvalidConfig)
}

func TestNewClient_EmptyStore(t *testing.T) {
	srv := fakeservice.New(t)
	c := newClient(t, srv)

	for _, slot := range token.Slots() {
		require.ErrorIs(t, c.Tokens().Check(slot), token.ErrTokenMissing)
	}
}

// TestClient_FullChain drives every hop, storing each result before the next
// hop, then queries the match count.
func TestClient_FullChain(t *testing.T) {
	srv := fakeservice.New(t)
	srv.Handle("/oauth20_token.srf", http.StatusOK, map[string]any{"token_type": "bearer", "access_token": "EwA4A", "refresh_token": "M.R3"})
	srv.Handle("/user/authenticate", http.StatusOK, token.XboxToken{NotAfter: future, Token: "xbox-user"})
	srv.HandleFunc("/xsts/authorize", func(req fakeservice.RecordedRequest) (int, any) {
		var body struct{ RelyingParty string }
		req.JSON(t, &body)
		if body.RelyingParty == "http://xboxlive.com" {
			return http.StatusOK, token.XboxToken{NotAfter: future, Token: "xsts-xbox", DisplayClaims: token.DisplayClaims{Xui: []token.XboxUserClaims{{Xid: testXuid}}}}
		}
		return http.StatusOK, token.XboxToken{NotAfter: future, Token: "xsts-halo"}
	})
	srv.Handle("/spartan-token", http.StatusOK, token.SpartanToken{SpartanToken: "v4=spartan", ExpiresUtc: token.SpartanExpiry{ISO8601Date: future}})
	srv.Handle("/oban/flight-configurations/titles/hi/audiences/RETAIL/players/xuid("+testXuid+")/active", http.StatusOK, token.ClearanceToken{FlightConfigurationID: "flight"})
	srv.Handle("/hi/players/xuid("+testXuid+")/matches/count", http.StatusOK, map[string]any{"MatchesPlayedCount": 12})

	c := newClient(t, srv)
	ctx := context.Background()
	store := c.Tokens()

	resp, err := c.Auth.ExchangeCode(ctx, "", "code")
	require.NoError(t, err)
	var user token.UserToken
	require.NoError(t, resp.Decode(&user))
	store.SetUserToken(user)

	resp, err = c.Auth.AcquireXboxUserToken(ctx)
	require.NoError(t, err)
	var xboxUser token.XboxToken
	require.NoError(t, resp.Decode(&xboxUser))
	store.SetXboxUserToken(xboxUser)

	resp, err = c.Auth.AcquireXstsXboxToken(ctx)
	require.NoError(t, err)
	var xstsXbox token.XboxToken
	require.NoError(t, resp.Decode(&xstsXbox))
	store.SetXstsXboxToken(xstsXbox)

	resp, err = c.Auth.AcquireXstsHaloToken(ctx)
	require.NoError(t, err)
	var xstsHalo token.XboxToken
	require.NoError(t, resp.Decode(&xstsHalo))
	store.SetXstsHaloToken(xstsHalo)

	resp, err = c.Auth.AcquireSpartanToken(ctx)
	require.NoError(t, err)
	var spartan token.SpartanToken
	require.NoError(t, resp.Decode(&spartan))
	store.SetSpartanToken(spartan)

	resp, err = c.Auth.AcquireClearanceToken(ctx)
	require.NoError(t, err)
	var clearance token.ClearanceToken
	require.NoError(t, resp.Decode(&clearance))
	store.SetClearanceToken(clearance)

	count, err := c.Match.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]any{"MatchesPlayedCount": float64(12)}, count.Data)

	require.Equal(t, 7, srv.Count())
	halo := srv.Requests()[4]
	require.Equal(t, "/spartan-token", halo.Path)
	var spartanReq struct {
		Proof []struct{ Token string }
	}
	halo.JSON(t, &spartanReq)
	require.Equal(t, "xsts-halo", spartanReq.Proof[0].Token)
}

func TestClient_WithSnapshot(t *testing.T) {
	srv := fakeservice.New(t)
	srv.Handle("/hi/matches/m1/stats", http.StatusOK, map[string]any{})
	c := newClient(t, srv, halo.WithSnapshot(token.Snapshot{
		Spartan: &token.SpartanToken{SpartanToken: "v4=seeded", ExpiresUtc: token.SpartanExpiry{ISO8601Date: future}},
	}))

	_, err := c.Match.Stats(context.Background(), "m1")
	require.NoError(t, err)
	require.Equal(t, "v4=seeded", srv.Last(t).Header.Get("x-343-authorization-spartan"))

	_, err = c.Match.History(context.Background())
	require.ErrorIs(t, err, auth.ErrPreconditionNotMet)
}

func TestClient_SharedStore(t *testing.T) {
	srv := fakeservice.New(t)
	store := token.NewStore()
	c := newClient(t, srv, halo.WithStore(store))

	store.SetClearanceToken(token.ClearanceToken{FlightConfigurationID: "shared"})
	got, err := c.Tokens().ClearanceToken()
	require.NoError(t, err)
	require.Equal(t, "shared", got.FlightConfigurationID)
}

func TestClient_Settings(t *testing.T) {
	srv := fakeservice.New(t)
	srv.Handle("/settings/hipc/e2a0a7c6-6efe-42af-9283-c2ab73250c48", http.StatusOK, map[string]any{"Gamecms": map[string]any{"Path": "/hi/"}})
	c := newClient(t, srv)

	resp, err := c.Settings(context.Background())

	require.NoError(t, err)
	require.NotNil(t, resp.Data)
	require.Empty(t, srv.Last(t).Header.Get("x-343-authorization-spartan"))
}
