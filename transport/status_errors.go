package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a non-success response status.
type Kind int

// Each Kind names the status it is mapped from. Unknown covers every
// non-success status without a dedicated kind, including 3xx, 203 and 205.
const (
	Unknown Kind = iota

	BadRequest             // 400
	Unauthorized           // 401, usually an expired or rejected upstream token
	Forbidden              // 403
	NotFound               // 404
	MethodNotAllowed       // 405
	NotAcceptable          // 406
	Conflict               // 409
	Gone                   // 410
	LengthRequired         // 411
	PreconditionFailed     // 412
	PayloadTooLarge        // 413
	UnsupportedMediaType   // 415
	RangeNotSatisfiable    // 416
	UnprocessableEntity    // 422
	TooManyRequests        // 429
	InternalServerError    // 500
	NotImplemented         // 501
	ServiceUnavailable     // 503
	GatewayTimeout         // 504
	InsufficientStorage    // 507
	BandwidthLimitExceeded // 509
)

var (
	ErrUnknown                = errors.New("unknown error")
	ErrBadRequest             = errors.New("bad request")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrForbidden              = errors.New("forbidden")
	ErrNotFound               = errors.New("not found")
	ErrMethodNotAllowed       = errors.New("method not allowed")
	ErrNotAcceptable          = errors.New("not acceptable")
	ErrConflict               = errors.New("conflict")
	ErrGone                   = errors.New("gone")
	ErrLengthRequired         = errors.New("length required")
	ErrPreconditionFailed     = errors.New("precondition failed")
	ErrPayloadTooLarge        = errors.New("payload too large")
	ErrUnsupportedMediaType   = errors.New("unsupported media type")
	ErrRangeNotSatisfiable    = errors.New("range not satisfiable")
	ErrUnprocessableEntity    = errors.New("unprocessable entity")
	ErrTooManyRequests        = errors.New("too many requests")
	ErrInternalServerError    = errors.New("internal server error")
	ErrNotImplemented         = errors.New("not implemented")
	ErrServiceUnavailable     = errors.New("service unavailable")
	ErrGatewayTimeout         = errors.New("gateway timeout")
	ErrInsufficientStorage    = errors.New("insufficient storage")
	ErrBandwidthLimitExceeded = errors.New("bandwidth limit exceeded")

	// ErrTransport marks failures where no usable response was received.
	ErrTransport = errors.New("transport failure")

	// ErrResponseTooLarge is wrapped in a *RequestError when a body exceeds
	// the client's size limit.
	ErrResponseTooLarge = errors.New("response body too large")
)

var kindSentinels = map[Kind]error{
	Unknown:                ErrUnknown,
	BadRequest:             ErrBadRequest,
	Unauthorized:           ErrUnauthorized,
	Forbidden:              ErrForbidden,
	NotFound:               ErrNotFound,
	MethodNotAllowed:       ErrMethodNotAllowed,
	NotAcceptable:          ErrNotAcceptable,
	Conflict:               ErrConflict,
	Gone:                   ErrGone,
	LengthRequired:         ErrLengthRequired,
	PreconditionFailed:     ErrPreconditionFailed,
	PayloadTooLarge:        ErrPayloadTooLarge,
	UnsupportedMediaType:   ErrUnsupportedMediaType,
	RangeNotSatisfiable:    ErrRangeNotSatisfiable,
	UnprocessableEntity:    ErrUnprocessableEntity,
	TooManyRequests:        ErrTooManyRequests,
	InternalServerError:    ErrInternalServerError,
	NotImplemented:         ErrNotImplemented,
	ServiceUnavailable:     ErrServiceUnavailable,
	GatewayTimeout:         ErrGatewayTimeout,
	InsufficientStorage:    ErrInsufficientStorage,
	BandwidthLimitExceeded: ErrBandwidthLimitExceeded,
}

var statusKinds = map[int]Kind{
	http.StatusBadRequest:                   BadRequest,
	http.StatusUnauthorized:                 Unauthorized,
	http.StatusForbidden:                    Forbidden,
	http.StatusNotFound:                     NotFound,
	http.StatusMethodNotAllowed:             MethodNotAllowed,
	http.StatusNotAcceptable:                NotAcceptable,
	http.StatusConflict:                     Conflict,
	http.StatusGone:                         Gone,
	http.StatusLengthRequired:               LengthRequired,
	http.StatusPreconditionFailed:           PreconditionFailed,
	http.StatusRequestEntityTooLarge:        PayloadTooLarge,
	http.StatusUnsupportedMediaType:         UnsupportedMediaType,
	http.StatusRequestedRangeNotSatisfiable: RangeNotSatisfiable,
	http.StatusUnprocessableEntity:          UnprocessableEntity,
	http.StatusTooManyRequests:              TooManyRequests,
	http.StatusInternalServerError:          InternalServerError,
	http.StatusNotImplemented:               NotImplemented,
	http.StatusServiceUnavailable:           ServiceUnavailable,
	http.StatusGatewayTimeout:               GatewayTimeout,
	http.StatusInsufficientStorage:          InsufficientStorage,
	509:                                     BandwidthLimitExceeded, // not registered with IANA, no net/http constant
}

func (k Kind) String() string {
	return kindSentinels[k].Error()
}

// KindOf maps a status code to its Kind. Codes without a dedicated kind,
// including the success codes, map to Unknown.
func KindOf(statusCode int) Kind {
	if k, ok := statusKinds[statusCode]; ok {
		return k
	}
	return Unknown
}

// IsSuccess reports whether statusCode is one of the accepted success codes.
// Other 2xx codes are not.
func IsSuccess(statusCode int) bool {
	switch statusCode {
	case http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent, http.StatusPartialContent:
		return true
	}
	return false
}

// StatusError is returned when the remote service answered with a status
// outside the success set.
type StatusError struct {
	Kind       Kind
	StatusCode int
	// Body is the decoded JSON payload, or the payload as a string when it
	// is not JSON.
	Body any
	Raw  []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s (status %d)", e.Kind, e.StatusCode)
}

// Is matches the sentinel for the error's kind, so errors.Is(err, ErrNotFound) works.
func (e *StatusError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// MapStatus returns nil for a success code, otherwise a *StatusError carrying raw.
func MapStatus(statusCode int, raw []byte) error {
	if IsSuccess(statusCode) {
		return nil
	}
	return &StatusError{
		Kind:       KindOf(statusCode),
		StatusCode: statusCode,
		Body:       decodeBody(raw),
		Raw:        raw,
	}
}

// RequestError wraps failures that happen before a response status is
// usable: DNS, refused connections, timeouts, cancelled contexts, or a body
// over the size limit.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

func (e *RequestError) Is(target error) bool {
	return target == ErrTransport
}

func decodeBody(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}
