package apierr

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/ieltsly/speaking-results/internal/fetch"
)

// Kind is a stable identifier for a failure class. The presentation
// layer decides UI treatment from the kind alone.
type Kind string

const (
	KindNoSessionCode Kind = "NO_SESSION_CODE"
	KindBadRequest    Kind = "BAD_REQUEST"
	KindTimeout       Kind = "TIMEOUT"
	KindNotFound      Kind = "NOT_FOUND"
	KindForbidden     Kind = "FORBIDDEN"
	KindRateLimited   Kind = "RATE_LIMITED"
	KindServerError   Kind = "SERVER_ERROR"
	KindNoConnection  Kind = "NO_CONNECTION"
	KindNetworkError  Kind = "NETWORK_ERROR"
	KindInvalidJSON   Kind = "INVALID_JSON"
	KindUnknown       Kind = "UNKNOWN_ERROR"
)

var messages = map[Kind]string{
	KindNoSessionCode: "No session code found in URL. Please check your URL format (e.g., /s23Tq9).",
	KindBadRequest:    "Invalid session code format.",
	KindTimeout:       "Request timeout. Please check your internet connection and try again.",
	KindNotFound:      "Results not found for this session. Please check the session code.",
	KindForbidden:     "Access denied. You may not have permission to view these results.",
	KindRateLimited:   "Too many requests. Please wait a moment and try again.",
	KindServerError:   "Server error. Please try again later.",
	KindNoConnection:  "No internet connection. Please check your connection and try again.",
	KindNetworkError:  "Unable to connect to the server. Please try again later.",
	KindInvalidJSON:   "Received an invalid response from the server. Please try again later.",
	KindUnknown:       "An error occurred while fetching the results",
}

// Message returns the user-facing message for a kind.
func Message(kind Kind) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return messages[KindUnknown]
}

// Error is the single structured failure value surfaced to callers.
// The original failure is always retained as Cause.
type Error struct {
	Kind        Kind
	Message     string
	Status      int
	SessionCode string
	Cause       error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error of the given kind with its canonical message.
func New(kind Kind, sessionCode string) *Error {
	return &Error{Kind: kind, Message: Message(kind), SessionCode: sessionCode}
}

// Retryable reports whether a failure kind is transient enough to be
// worth an automatic retry.
func (k Kind) Retryable() bool {
	switch k {
	case KindTimeout, KindNetworkError, KindServerError, KindRateLimited:
		return true
	}
	return false
}

// UserRetryable reports whether a manual retry action should be offered
// for this failure kind.
func (k Kind) UserRetryable() bool {
	switch k {
	case KindTimeout, KindNetworkError, KindServerError, KindNoConnection:
		return true
	}
	return false
}

// networkPatterns match transport-level failure messages that indicate
// the server could not be reached at all.
var networkPatterns = []string{
	"connection refused",
	"connection reset",
	"no such host",
	"network is unreachable",
	"broken pipe",
	"dial tcp",
	"EOF",
}

// Classifier maps any raw failure to the stable taxonomy. The optional
// Offline probe reports whether the device has no connectivity at all;
// when nil the NO_CONNECTION branch is never taken.
type Classifier struct {
	Offline func() bool
}

// Classify maps err to a classified Error for sessionCode. An already
// classified error passes through unchanged apart from filling in the
// session code. The mapping is evaluated in a fixed order and the
// first match wins.
func (c *Classifier) Classify(err error, sessionCode string) *Error {
	var classified *Error
	if errors.As(err, &classified) {
		if classified.SessionCode == "" {
			classified.SessionCode = sessionCode
		}
		return classified
	}

	out := &Error{Kind: KindUnknown, SessionCode: sessionCode, Cause: err}

	var httpErr *fetch.HTTPError
	var netErr net.Error

	status := 0
	if errors.As(err, &httpErr) {
		status = httpErr.Status
		out.Status = status
	}

	switch {
	case errors.Is(err, fetch.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.As(err, &netErr) && netErr.Timeout():
		out.Kind = KindTimeout
	case status == http.StatusNotFound:
		out.Kind = KindNotFound
	case status == http.StatusBadRequest:
		out.Kind = KindBadRequest
	case status == http.StatusForbidden:
		out.Kind = KindForbidden
	case status == http.StatusTooManyRequests:
		out.Kind = KindRateLimited
	case status >= http.StatusInternalServerError:
		out.Kind = KindServerError
	case errors.Is(err, fetch.ErrInvalidJSON):
		out.Kind = KindInvalidJSON
	case c.Offline != nil && c.Offline():
		out.Kind = KindNoConnection
	case err != nil && matchesNetworkPattern(err.Error()):
		out.Kind = KindNetworkError
	}

	out.Message = Message(out.Kind)
	return out
}

// Retryable classifies err and reports whether an automatic retry makes
// sense. Used as the retry predicate so deterministic failures abort
// the backoff loop immediately.
func (c *Classifier) Retryable(err error) bool {
	return c.Classify(err, "").Kind.Retryable()
}

func matchesNetworkPattern(msg string) bool {
	for _, p := range networkPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
