package httpserver

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"aptitude-helper/api/internal/handle"
)

// Routes регистрирует API-эндпоинты и /healthz на mux.
func Routes(mux *http.ServeMux, h *handle.Handle, healthzBody string) {
	Healthz(mux, healthzBody)
	mux.HandleFunc("/v1/aptitude/extract", h.Extract)
	mux.HandleFunc("/v1/aptitude/solve", h.Solve)
	mux.HandleFunc("/v1/aptitude/debug", h.Debug)
	mux.HandleFunc("/v1/aptitude/analyze/image", h.AnalyzeImage)
	mux.HandleFunc("/v1/aptitude/analyze/audio", h.AnalyzeAudio)
}

func Healthz(mux *http.ServeMux, body string) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func Listen(addr string, handler http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Info("listening", zap.String("addr", addr))
	return srv.ListenAndServe()
}
