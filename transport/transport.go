// Package transport is the single funnel every outbound call goes through.
// It applies the common headers, encodes request bodies, performs exactly one
// round trip and maps the response status onto the typed error taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	ierrors "github.com/jrsteele09/go-haloinfinite/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderSpartanToken  = "x-343-authorization-spartan"
	ContentTypeJSON     = "application/json"
	ContentTypeForm     = "application/x-www-form-urlencoded"
	defaultHTTPTimeout  = 30 * time.Second
	defaultMaxBodySize  = 10 << 20
)

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Request describes one outbound call. At most one of Form and JSON is used;
// Form takes precedence.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Form   url.Values
	JSON   any
}

// Response is the uniform wrapper returned for every success status.
type Response struct {
	StatusCode int
	Header     http.Header
	// Data is the decoded JSON body, the body as a string when it is not
	// JSON, or nil when the body is empty.
	Data any
	Raw  []byte
}

// Decode unmarshals the raw payload into v.
func (r *Response) Decode(v any) error {
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("%w (status %d): %v", ierrors.ErrDecode, r.StatusCode, err)
	}
	return nil
}

// Client is the default Transport, one round trip per Do.
type Client struct {
	doer        Doer
	limiter     *rate.Limiter
	userAgent   string
	maxBodySize int64
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default *http.Client. Any timeout must be
// configured on the supplied client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithTimeout sets the timeout of the default *http.Client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.doer = &http.Client{Timeout: timeout}
	}
}

// WithRateLimiter paces outbound calls. Waiting for the limiter honours the
// request context; nothing is ever retried.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithMaxBodySize caps how many response bytes are read. Larger bodies fail
// with ErrResponseTooLarge rather than being truncated.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New returns a Client with a 30 second timeout and a 10 MiB body limit
// unless options say otherwise.
func New(options ...Option) *Client {
	c := &Client{maxBodySize: defaultMaxBodySize}
	for _, opt := range options {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return c
}

// Do performs req and returns the wrapped response for a success status.
// Non-success statuses return a *StatusError, failures without a response a
// *RequestError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return nil, &RequestError{Method: method, URL: req.URL, Err: err}
	}
	httpReq.Header.Set(HeaderAccept, ContentTypeJSON)
	if contentType != "" {
		httpReq.Header.Set(HeaderContentType, contentType)
	}
	if c.userAgent != "" {
		httpReq.Header.Set(HeaderUserAgent, c.userAgent)
	}
	for k, v := range req.Header {
		httpReq.Header.Set(k, v)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &RequestError{Method: method, URL: req.URL, Err: err}
		}
	}

	start := time.Now()
	httpResp, err := c.doer.Do(httpReq)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("url", req.URL).Msg("request failed")
		return nil, &RequestError{Method: method, URL: req.URL, Err: err}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, &RequestError{Method: method, URL: req.URL, Err: err}
	}
	if int64(len(raw)) > c.maxBodySize {
		return nil, &RequestError{
			Method: method,
			URL:    req.URL,
			Err:    fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, c.maxBodySize),
		}
	}

	log.Debug().
		Str("method", method).
		Str("url", req.URL).
		Int("status", httpResp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if err := MapStatus(httpResp.StatusCode, raw); err != nil {
		return nil, err
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Data:       decodeBody(raw),
		Raw:        raw,
	}, nil
}

func encodeBody(req Request) (io.Reader, string, error) {
	switch {
	case req.Form != nil:
		return strings.NewReader(req.Form.Encode()), ContentTypeForm, nil
	case req.JSON != nil:
		b, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ierrors.ErrEncode, err)
		}
		return bytes.NewReader(b), ContentTypeJSON, nil
	}
	return nil, "", nil
}
