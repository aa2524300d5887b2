package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ErrorKind classifies a failed API call.
type ErrorKind int

const (
	KindUnauthorized ErrorKind = iota + 1
	KindNotFound
	KindRateLimited
	KindServerError
	KindNetwork
	KindDecode
	KindBadRequest
)

var kindNames = map[ErrorKind]string{
	KindUnauthorized: "unauthorized",
	KindNotFound:     "not_found",
	KindRateLimited:  "rate_limited",
	KindServerError:  "server_error",
	KindNetwork:      "network",
	KindDecode:       "decode_error",
	KindBadRequest:   "bad_request",
}

func (k ErrorKind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Retryable reports whether a failure of this kind may succeed on a later attempt.
func (k ErrorKind) Retryable() bool {
	switch k {
	case KindRateLimited, KindServerError, KindNetwork:
		return true
	}
	return false
}

// APIError is the classified failure of a single Transport call.
type APIError struct {
	Kind       ErrorKind
	Op         string
	Status     int
	RetryAfter time.Duration
	Err        error
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(strings.ReplaceAll(e.Kind.String(), "_", " "))
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *APIError) Unwrap() error { return e.Err }

// Retryable reports whether the failure may succeed on a later attempt.
func (e *APIError) Retryable() bool { return e.Kind.Retryable() }

// KindOf returns the ErrorKind carried by err. Errors that were never
// classified by the Transport (context expiry, stub failures) count as
// KindNetwork. A nil error returns 0.
func KindOf(err error) ErrorKind {
	if err == nil {
		return 0
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindNetwork
}

// RetryAfter returns the provider-supplied delay carried by err, or 0.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}

// kindForStatus maps an HTTP (or envelope) status code to an ErrorKind.
// ok is false for 2xx codes.
func kindForStatus(code int) (kind ErrorKind, ok bool) {
	switch {
	case code >= 200 && code < 300:
		return 0, false
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return KindUnauthorized, true
	case code == http.StatusNotFound:
		return KindNotFound, true
	case code == http.StatusTooManyRequests:
		return KindRateLimited, true
	case code >= 500:
		return KindServerError, true
	default:
		return KindBadRequest, true
	}
}

// parseRetryAfter parses a Retry-After header given either as delta seconds
// or as an HTTP date. Unparseable or past values yield 0.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

// networkError wraps a transport-level failure. Deadline expiry of the
// per-request timeout lands here too.
func networkError(op string, err error) *APIError {
	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("request deadline exceeded: %w", err)
	}
	return &APIError{Kind: KindNetwork, Op: op, Err: err}
}
