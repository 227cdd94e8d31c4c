package main

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"aptitude-helper/api/internal/config"
	"aptitude-helper/api/internal/handle"
	"aptitude-helper/api/internal/httpserver"
	"aptitude-helper/api/internal/llm/gemini"
	"aptitude-helper/api/internal/logger"
)

func main() {
	boot := logger.New(false)
	cfg, err := config.Load()
	if err != nil {
		boot.Fatal("config", zap.Error(err))
	}

	lg := logger.New(cfg.LogDebug)
	defer func() { _ = lg.Sync() }()

	eng, err := gemini.New(context.Background(), cfg.GeminiAPIKey,
		gemini.WithModel(cfg.GeminiModel),
		gemini.WithSystemPrompt(cfg.SystemPrompt),
		gemini.WithRetry(cfg.MaxRetries, cfg.RetryBaseDelay()),
		gemini.WithLogger(lg.Named("gemini")),
	)
	if err != nil {
		lg.Fatal("gemini engine", zap.Error(err))
	}
	defer func() { _ = eng.Close() }()

	mux := http.NewServeMux()
	httpserver.Routes(mux, handle.New(eng, lg.Named("http")), "ok")

	lg.Info("aptitude-proxy starting", zap.String("model", eng.GetModel()))
	if err := httpserver.Listen(":"+cfg.Port, mux, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}
