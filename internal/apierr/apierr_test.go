package apierr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ieltsly/speaking-results/internal/fetch"
)

func TestClassifyTable(t *testing.T) {
	c := &Classifier{}

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"timeout sentinel", fmt.Errorf("%w after 15s", fetch.ErrTimeout), KindTimeout},
		{"context deadline", context.DeadlineExceeded, KindTimeout},
		{"404", &fetch.HTTPError{Status: 404}, KindNotFound},
		{"400", &fetch.HTTPError{Status: 400}, KindBadRequest},
		{"403", &fetch.HTTPError{Status: 403}, KindForbidden},
		{"429", &fetch.HTTPError{Status: 429}, KindRateLimited},
		{"500", &fetch.HTTPError{Status: 500}, KindServerError},
		{"503", &fetch.HTTPError{Status: 503}, KindServerError},
		{"invalid json", fmt.Errorf("%w: unexpected token", fetch.ErrInvalidJSON), KindInvalidJSON},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), KindNetworkError},
		{"unknown", errors.New("something odd"), KindUnknown},
		{"unmapped status", &fetch.HTTPError{Status: 418}, KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.err, "demo01")
			assert.Equal(t, tt.want, got.Kind)
			assert.Equal(t, "demo01", got.SessionCode)
			assert.Equal(t, Message(tt.want), got.Message)
			assert.Equal(t, tt.err, got.Cause)
		})
	}
}

func TestClassifyOffline(t *testing.T) {
	c := &Classifier{Offline: func() bool { return true }}

	// offline with no status attached
	got := c.Classify(errors.New("something odd"), "x")
	assert.Equal(t, KindNoConnection, got.Kind)

	// an HTTP status still wins over the offline probe
	got = c.Classify(&fetch.HTTPError{Status: 404}, "x")
	assert.Equal(t, KindNotFound, got.Kind)
}

func TestClassifyStatusAttached(t *testing.T) {
	c := &Classifier{}
	got := c.Classify(&fetch.HTTPError{Status: 503, Body: "upstream down"}, "demo01")
	assert.Equal(t, 503, got.Status)
	require.NotNil(t, got.Cause)
}

func TestClassifyPassThrough(t *testing.T) {
	c := &Classifier{}
	orig := New(KindNoSessionCode, "")
	got := c.Classify(orig, "demo01")
	assert.Same(t, orig, got)
	assert.Equal(t, "demo01", got.SessionCode)
}

func TestErrorUnwrap(t *testing.T) {
	cause := &fetch.HTTPError{Status: 500}
	e := (&Classifier{}).Classify(cause, "x")
	var httpErr *fetch.HTTPError
	assert.ErrorAs(t, e, &httpErr)
}

func TestKindRetryable(t *testing.T) {
	assert.True(t, KindTimeout.Retryable())
	assert.True(t, KindNetworkError.Retryable())
	assert.True(t, KindServerError.Retryable())
	assert.True(t, KindRateLimited.Retryable())
	assert.False(t, KindBadRequest.Retryable())
	assert.False(t, KindNotFound.Retryable())
	assert.False(t, KindInvalidJSON.Retryable())

	assert.True(t, KindNoConnection.UserRetryable())
	assert.False(t, KindRateLimited.UserRetryable())
	assert.False(t, KindNoSessionCode.UserRetryable())
}

func TestClassifierRetryable(t *testing.T) {
	c := &Classifier{}
	assert.True(t, c.Retryable(&fetch.HTTPError{Status: 503}))
	assert.False(t, c.Retryable(&fetch.HTTPError{Status: 400}))
}
