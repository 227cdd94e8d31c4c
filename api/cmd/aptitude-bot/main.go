package main

import (
	"context"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"aptitude-helper/api/internal/config"
	"aptitude-helper/api/internal/httpserver"
	"aptitude-helper/api/internal/llm/gemini"
	"aptitude-helper/api/internal/logger"
	"aptitude-helper/api/internal/telegram"
)

func main() {
	// до чтения конфига уровень ещё неизвестен
	boot := logger.New(false)
	cfg, err := loadConfig()
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

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		lg.Fatal("telegram", zap.Error(err))
	}
	bot.Debug = false

	r := telegram.NewRouter(bot, eng, lg.Named("telegram"))

	// DefaultServeMux: ListenForWebhook регистрирует обработчик именно там
	httpserver.Healthz(http.DefaultServeMux, "ok")

	addr := "0.0.0.0:" + cfg.Port
	if webhookURL := strings.TrimSpace(cfg.WebhookURL); webhookURL != "" {
		startWebhookMode(addr, bot, r, webhookURL, lg)
	} else {
		startPollingMode(addr, bot, r, lg)
	}
}

// loadConfig: общий конфиг плюс токен бота.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireTelegram(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ---------------- Modes -----------------

func startWebhookMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, baseURL string, lg *zap.Logger) {
	// секретный путь вебхука
	path := "/webhook/" + shortHash(bot.Token)
	public := strings.TrimRight(baseURL, "/") + path

	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		lg.Fatal("webhook config", zap.Error(err))
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		lg.Fatal("set webhook", zap.Error(err))
	}

	updates := bot.ListenForWebhook(path)
	go func() {
		for upd := range updates {
			go r.HandleUpdate(upd)
		}
		lg.Warn("webhook updates channel closed")
	}()

	lg.Info("webhook mode", zap.String("addr", addr), zap.String("path", path))
	if err := httpserver.Listen(addr, http.DefaultServeMux, lg); err != nil {
		lg.Fatal("server stopped", zap.Error(err))
	}
}

func startPollingMode(addr string, bot *tgbotapi.BotAPI, r *telegram.Router, lg *zap.Logger) {
	// healthz нужен платформе и в режиме polling
	go func() {
		if err := httpserver.Listen(addr, http.DefaultServeMux, lg); err != nil {
			lg.Fatal("server stopped", zap.Error(err))
		}
	}()

	if _, err := bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		lg.Warn("delete webhook", zap.Error(err))
	}

	lg.Info("polling mode")
	p := &poller{bot: bot, log: lg, sleep: sleepCtx}
	p.run(context.Background(), func(upd tgbotapi.Update) {
		go r.HandleUpdate(upd)
	})
}

func shortHash(s string) string {
	// FNV-1a, 16 hex-символов: стабильный путь для токена
	h := uint64(1469598103934665603)
	const prime = 1099511628211
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	const hexdigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexdigits[h&0xF]
		h >>= 4
	}
	return string(out)
}
