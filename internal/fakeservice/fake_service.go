// Package fakeservice is an httptest stand-in for the Microsoft account, Xbox
// Live and Halo Waypoint services. Every endpoint of config.Endpoints is
// rebased onto it, so one server answers the whole chain.
package fakeservice

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/jrsteele09/go-haloinfinite/config"
	"github.com/stretchr/testify/require"
)

type RecordedRequest struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// JSON unmarshals the recorded body into v.
func (r RecordedRequest) JSON(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, v))
}

// HandlerFunc returns the status and body to answer req with. A string or
// []byte body is written as is, anything else is JSON encoded.
type HandlerFunc func(req RecordedRequest) (int, any)

type Server struct {
	*httptest.Server
	lock     sync.Mutex
	requests []RecordedRequest
	handlers map[string]HandlerFunc
}

func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{handlers: make(map[string]HandlerFunc)}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// Handle answers every request to path with a fixed status and body.
func (s *Server) Handle(path string, status int, body any) {
	s.HandleFunc(path, func(RecordedRequest) (int, any) {
		return status, body
	})
}

func (s *Server) HandleFunc(path string, h HandlerFunc) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.handlers[path] = h
}

// Endpoints returns the production endpoint table rebased onto the server.
func (s *Server) Endpoints(t *testing.T) config.Endpoints {
	t.Helper()
	e, err := config.DefaultEndpoints().WithBaseURL(s.URL)
	require.NoError(t, err)
	return e
}

func (s *Server) Requests() []RecordedRequest {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

func (s *Server) Count() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.requests)
}

// Last returns the most recent request. It fails the test when there is none.
func (s *Server) Last(t *testing.T) RecordedRequest {
	t.Helper()
	reqs := s.Requests()
	require.NotEmpty(t, reqs, "no request recorded")
	return reqs[len(reqs)-1]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	rec := RecordedRequest{
		Method:   r.Method,
		Path:     r.URL.Path,
		RawQuery: r.URL.RawQuery,
		Header:   r.Header.Clone(),
		Body:     body,
	}

	s.lock.Lock()
	s.requests = append(s.requests, rec)
	h, ok := s.handlers[rec.Path]
	s.lock.Unlock()

	if !ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"no fake response registered"}`))
		return
	}

	status, payload := h(rec)
	var out []byte
	switch p := payload.(type) {
	case nil:
	case string:
		out = []byte(p)
	case []byte:
		out = p
	default:
		out, _ = json.Marshal(p)
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(status)
	_, _ = w.Write(out)
}
