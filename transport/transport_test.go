package transport_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jrsteele09/go-haloinfinite/transport"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type captured struct {
	method string
	header http.Header
	body   string
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *[]captured) {
	t.Helper()
	var calls []captured
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		calls = append(calls, captured{method: r.Method, header: r.Header.Clone(), body: string(b)})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClient_Do_Success(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{"SpartanToken":"v4=abc"}`)
	c := transport.New()

	resp, err := c.Do(context.Background(), transport.Request{URL: srv.URL})

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, map[string]any{"SpartanToken": "v4=abc"}, resp.Data)
	require.Equal(t, []byte(`{"SpartanToken":"v4=abc"}`), resp.Raw)
	require.Len(t, *calls, 1)
	require.Equal(t, http.MethodGet, (*calls)[0].method)
	require.Equal(t, "application/json", (*calls)[0].header.Get("Accept"))

	var decoded struct{ SpartanToken string }
	require.NoError(t, resp.Decode(&decoded))
	require.Equal(t, "v4=abc", decoded.SpartanToken)
}

func TestClient_Do_NoContent(t *testing.T) {
	srv, _ := newServer(t, http.StatusNoContent, "")

	resp, err := transport.New().Do(context.Background(), transport.Request{URL: srv.URL})

	require.NoError(t, err)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Nil(t, resp.Data)
}

func TestClient_Do_HeaderMerge(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{}`)

	_, err := transport.New().Do(context.Background(), transport.Request{
		URL: srv.URL,
		Header: map[string]string{
			"Accept":                      "text/plain",
			"x-343-authorization-spartan": "v4=token",
		},
	})

	require.NoError(t, err)
	h := (*calls)[0].header
	require.Equal(t, "text/plain", h.Get("Accept"), "caller value wins")
	require.Equal(t, "v4=token", h.Get("x-343-authorization-spartan"))
}

func TestClient_Do_Bodies(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		srv, calls := newServer(t, http.StatusOK, `{}`)
		_, err := transport.New().Do(context.Background(), transport.Request{
			Method: http.MethodPost,
			URL:    srv.URL,
			JSON:   map[string]string{"RelyingParty": "http://xboxlive.com"},
		})
		require.NoError(t, err)
		require.Equal(t, "application/json", (*calls)[0].header.Get("Content-Type"))
		require.JSONEq(t, `{"RelyingParty":"http://xboxlive.com"}`, (*calls)[0].body)
	})

	t.Run("form", func(t *testing.T) {
		srv, calls := newServer(t, http.StatusOK, `{}`)
		_, err := transport.New().Do(context.Background(), transport.Request{
			Method: http.MethodPost,
			URL:    srv.URL,
			Form:   url.Values{"grant_type": {"authorization_code"}},
		})
		require.NoError(t, err)
		require.Equal(t, "application/x-www-form-urlencoded", (*calls)[0].header.Get("Content-Type"))
		require.Equal(t, "grant_type=authorization_code", (*calls)[0].body)
	})
}

func TestClient_Do_StatusError(t *testing.T) {
	srv, calls := newServer(t, http.StatusTooManyRequests, `{"error":"throttled"}`)

	resp, err := transport.New().Do(context.Background(), transport.Request{URL: srv.URL})

	require.Nil(t, resp)
	require.ErrorIs(t, err, transport.ErrTooManyRequests)
	require.NotErrorIs(t, err, transport.ErrTransport)
	require.Len(t, *calls, 1, "no retry")

	var statusErr *transport.StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, map[string]any{"error": "throttled"}, statusErr.Body)
}

func TestClient_Do_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	_, err := transport.New(transport.WithTimeout(time.Second)).Do(context.Background(), transport.Request{URL: addr})

	require.ErrorIs(t, err, transport.ErrTransport)
	var statusErr *transport.StatusError
	require.False(t, errors.As(err, &statusErr))
}

func TestClient_Do_CancelledContext(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := transport.New().Do(ctx, transport.Request{URL: srv.URL})

	require.ErrorIs(t, err, transport.ErrTransport)
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, *calls)
}

func TestClient_Do_UserAgent(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{}`)

	_, err := transport.New(transport.WithUserAgent("haloauth")).Do(context.Background(), transport.Request{URL: srv.URL})

	require.NoError(t, err)
	require.Equal(t, "haloauth", (*calls)[0].header.Get("User-Agent"))
}

func TestClient_Do_RateLimiter(t *testing.T) {
	srv, calls := newServer(t, http.StatusOK, `{}`)
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	c := transport.New(transport.WithRateLimiter(limiter))

	_, err := c.Do(context.Background(), transport.Request{URL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Do(ctx, transport.Request{URL: srv.URL})

	require.ErrorIs(t, err, transport.ErrTransport)
	require.Len(t, *calls, 1, "second call never left the client")
}

func TestClient_Do_BodyLimit(t *testing.T) {
	t.Run("at the limit", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, `"0123456789"`)

		resp, err := transport.New(transport.WithMaxBodySize(12)).Do(context.Background(), transport.Request{URL: srv.URL})

		require.NoError(t, err)
		require.Equal(t, "0123456789", resp.Data)
	})

	t.Run("over the limit", func(t *testing.T) {
		srv, _ := newServer(t, http.StatusOK, `"0123456789A"`)

		_, err := transport.New(transport.WithMaxBodySize(12)).Do(context.Background(), transport.Request{URL: srv.URL})

		require.ErrorIs(t, err, transport.ErrTransport)
		require.ErrorIs(t, err, transport.ErrResponseTooLarge)
		var statusErr *transport.StatusError
		require.False(t, errors.As(err, &statusErr))
	})
}

func TestResponse_Decode_Invalid(t *testing.T) {
	resp := &transport.Response{StatusCode: http.StatusOK, Raw: []byte("not json")}
	var v map[string]any
	require.Error(t, resp.Decode(&v))
}
