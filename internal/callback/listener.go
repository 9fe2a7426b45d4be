// Package callback answers the Microsoft account redirect on the local
// machine so the CLI can pick up the authorization code without the user
// copying it out of the browser.
package callback

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	maxStateAge       = 10 * time.Minute
	readHeaderTimeout = 5 * time.Second
	signedInPage      = "Signed in. You can close this window and return to the terminal."
)

// ErrAuthorizationDenied is returned by Wait when the redirect carries an
// error parameter instead of a code.
var ErrAuthorizationDenied = errors.New("authorization denied")

type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s: %s - %s", ErrAuthorizationDenied, e.Code, e.Description)
}

func (e *AuthorizationError) Is(target error) bool {
	return target == ErrAuthorizationDenied
}

// Result is a redirect that carried a code and a known state.
type Result struct {
	Code    string
	State   string
	Pending PendingSignIn
}

type outcome struct {
	result Result
	err    error
}

type Listener struct {
	mux      *http.ServeMux
	addr     string
	path     string
	states   StateRepo
	outcomes chan outcome
	nowFunc  func() time.Time
}

type ListenerOption func(*Listener)

func WithNowFunc(now func() time.Time) ListenerOption {
	return func(l *Listener) {
		l.nowFunc = now
	}
}

// NewListener registers the callback route on the path of redirectURI. The
// host and port of redirectURI become the listen address for Serve.
func NewListener(redirectURI string, states StateRepo, options ...ListenerOption) (*Listener, error) {
	u, err := url.Parse(redirectURI)
	if err != nil {
		return nil, fmt.Errorf("parse redirect uri: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("redirect uri %q has no host", redirectURI)
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	l := &Listener{
		mux:      http.NewServeMux(),
		addr:     u.Host,
		path:     path,
		states:   states,
		outcomes: make(chan outcome, 1),
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(l)
	}
	l.mux.HandleFunc(path, l.CallbackHandler())
	log.Debug().Str("addr", l.addr).Str("path", path).Msg("callback route registered")
	return l, nil
}

func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.mux.ServeHTTP(w, r)
}

// CallbackHandler accepts both query parameters and form_post bodies.
// Requests with a missing or unknown state are rejected without ending the
// wait, a denial or a valid code ends it.
func (l *Listener) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := r.FormValue("state")
		code := r.FormValue("code")
		errorParam := r.FormValue("error")
		errorDesc := r.FormValue("error_description")

		if errorParam != "" {
			authErr := &AuthorizationError{Code: errorParam, Description: errorDesc}
			http.Error(w, authErr.Error(), http.StatusBadRequest)
			l.finish(outcome{err: authErr})
			return
		}

		if code == "" || state == "" {
			http.Error(w, "Missing code or state parameter", http.StatusBadRequest)
			return
		}

		pending, err := l.states.Get(state)
		if err != nil {
			log.Warn().Err(err).Msg("callback with unknown state")
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		// a state is single use
		if err := l.states.Delete(state); err != nil {
			http.Error(w, "Invalid state parameter", http.StatusInternalServerError)
			return
		}

		if l.nowFunc().Sub(pending.CreatedAt) > maxStateAge {
			http.Error(w, "Sign-in link expired, start again", http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = fmt.Fprintln(w, signedInPage)
		l.finish(outcome{result: Result{Code: code, State: state, Pending: *pending}})
	}
}

func (l *Listener) finish(o outcome) {
	select {
	case l.outcomes <- o:
	default:
		log.Debug().Msg("callback already completed, ignoring")
	}
}

// Wait blocks until a redirect completes the sign-in or ctx is done.
func (l *Listener) Wait(ctx context.Context) (Result, error) {
	select {
	case o := <-l.outcomes:
		return o.result, o.err
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Serve listens on the redirect URI's address until one redirect completes
// the sign-in or ctx is done.
func (l *Listener) Serve(ctx context.Context) (Result, error) {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return Result{}, fmt.Errorf("listen on %s: %w", l.addr, err)
	}

	srv := &http.Server{Handler: l, ReadHeaderTimeout: readHeaderTimeout}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Err(err).Msg("callback server stopped")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), readHeaderTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", l.addr).Msg("waiting for the sign-in redirect")
	return l.Wait(ctx)
}
