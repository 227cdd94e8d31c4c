package llm

import (
	"net/http"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func TestIsTransient(t *testing.T) {
	assert.False(t, IsTransient(nil))
	assert.True(t, IsTransient(errors.New("model is overloaded")))
	assert.True(t, IsTransient(errors.New("got HTTP 503 from upstream")))
	assert.True(t, IsTransient(errors.Wrap(errors.New("503"), "wrapped")))
	assert.False(t, IsTransient(errors.New("invalid api key")))
	assert.False(t, IsTransient(errors.New("Overloaded")), "markers are case sensitive")
}

func TestNewRemoteCallErrorFromGoogleAPIStatus(t *testing.T) {
	unavailable := NewRemoteCallError("extract problem", &googleapi.Error{Code: http.StatusServiceUnavailable, Message: "busy"})
	assert.Equal(t, http.StatusServiceUnavailable, unavailable.Code)
	assert.True(t, unavailable.Transient)

	limited := NewRemoteCallError("extract problem", &googleapi.Error{Code: http.StatusTooManyRequests})
	assert.True(t, limited.Transient)

	bad := NewRemoteCallError("extract problem", &googleapi.Error{Code: http.StatusBadRequest, Message: "bad"})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
	assert.False(t, bad.Transient)
	assert.False(t, IsTransient(bad))
}

func TestNewRemoteCallErrorPlainError(t *testing.T) {
	rce := NewRemoteCallError("analyze audio", errors.New("connection reset"))
	assert.Zero(t, rce.Code)
	assert.False(t, rce.Transient)
	assert.Contains(t, rce.Error(), "analyze audio")
	assert.Contains(t, rce.Error(), "connection reset")
}

func TestTypedErrorsUnwrap(t *testing.T) {
	readErr := &AttachmentReadError{Path: "/tmp/missing.png", Err: os.ErrNotExist}
	require.True(t, errors.Is(readErr, os.ErrNotExist))
	assert.Contains(t, readErr.Error(), "/tmp/missing.png")

	parseErr := &ResponseParseError{Op: "extract problem", Raw: "not json", Err: errors.New("boom")}
	assert.Contains(t, parseErr.Error(), "not json")
	assert.Equal(t, "boom", errors.Unwrap(parseErr).Error())
}
