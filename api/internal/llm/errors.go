package llm

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
)

var (
	// ErrInvalidInput is returned before any file or network access when a
	// required argument is missing or empty.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMaxRetriesExceeded is returned when the retry loop ends without a
	// captured error, which only happens with a non-positive attempt budget.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

// Маркеры «временной перегрузки» в тексте ошибки (fallback, если статус неизвестен).
var transientMarkers = []string{"overloaded", "503"}

// AttachmentReadError: не удалось прочитать файл вложения. Не ретраится.
type AttachmentReadError struct {
	Path string
	Err  error
}

func (e *AttachmentReadError) Error() string {
	return fmt.Sprintf("failed to read attachment %s: %v", e.Path, e.Err)
}

func (e *AttachmentReadError) Unwrap() error { return e.Err }

// ResponseParseError: ответ модели не JSON (или не та структура). Raw хранит
// очищенный текст ответа для диагностики.
type ResponseParseError struct {
	Op  string
	Raw string
	Err error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("%s: bad JSON: %v (response=%s)", e.Op, e.Err, snippet(e.Raw, 200))
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

// RemoteCallError wraps a failure of the model service. Code is the HTTP
// status when the service reported one; Transient is set when that status
// says the service is temporarily overloaded.
type RemoteCallError struct {
	Op        string
	Code      int
	Transient bool
	Err       error
}

func (e *RemoteCallError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: remote call failed (status %d): %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: remote call failed: %v", e.Op, e.Err)
}

func (e *RemoteCallError) Unwrap() error { return e.Err }

// NewRemoteCallError classifies err using the status information the Google
// client libraries attach to it.
func NewRemoteCallError(op string, err error) *RemoteCallError {
	rce := &RemoteCallError{Op: op, Err: err}

	var apiErr *apierror.APIError
	var gErr *googleapi.Error
	switch {
	case errors.As(err, &apiErr):
		if code := apiErr.HTTPCode(); code > 0 {
			rce.Code = code
		}
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.Unavailable, codes.ResourceExhausted:
				rce.Transient = true
			}
		}
	case errors.As(err, &gErr):
		rce.Code = gErr.Code
	}

	switch rce.Code {
	case http.StatusServiceUnavailable, http.StatusTooManyRequests:
		rce.Transient = true
	}
	return rce
}

// IsTransient reports whether err should be retried: either the boundary
// tagged it as transient, or its message carries an overload marker.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var rce *RemoteCallError
	if errors.As(err, &rce) && rce.Transient {
		return true
	}
	msg := err.Error()
	return lo.ContainsBy(transientMarkers, func(marker string) bool {
		return strings.Contains(msg, marker)
	})
}

func snippet(s string, limit int) string {
	s = strings.TrimSpace(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
