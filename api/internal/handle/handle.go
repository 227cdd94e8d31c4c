package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"aptitude-helper/api/internal/llm"
)

const (
	defaultDeadline = 180 * time.Second
	// base64 картинок и аудио в JSON
	maxBodyBytes = 20 << 20
)

type Handle struct {
	eng llm.Engine
	log *zap.Logger
}

func New(eng llm.Engine, log *zap.Logger) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handle{
		eng: eng,
		log: log,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// decodePOST проверяет метод и читает JSON-тело. false: ответ уже записан.
func decodePOST(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "POST only"})
		return false
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad json: " + err.Error()})
		return false
	}
	return true
}

// requestContext: таймаут из X-Request-Timeout или ?timeoutSec, по умолчанию 180s.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := defaultDeadline
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	return context.WithTimeout(r.Context(), deadline)
}

func (h *Handle) writeError(w http.ResponseWriter, op string, err error) {
	code := statusFor(err)
	h.log.Warn("request failed", zap.String("op", op), zap.Int("status", code), zap.Error(err))
	writeJSON(w, code, map[string]string{"error": op + " error: " + err.Error()})
}

func statusFor(err error) int {
	var (
		readErr   *llm.AttachmentReadError
		parseErr  *llm.ResponseParseError
		remoteErr *llm.RemoteCallError
	)
	switch {
	case errors.Is(err, llm.ErrInvalidInput), errors.As(err, &readErr):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &remoteErr) && llm.IsTransient(remoteErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &parseErr), errors.As(err, &remoteErr), errors.Is(err, llm.ErrMaxRetriesExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
