package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"aptitude-helper/api/internal/llm"
)

const (
	defaultPort  = "8000"
	defaultModel = "gemini-2.0-flash"
)

// Config: настройки сервисов. Порядок: значения по умолчанию, затем TOML-файл
// из APTITUDE_CONFIG, затем переменные окружения.
type Config struct {
	Port string `toml:"port"`

	GeminiAPIKey     string `toml:"gemini_api_key"`
	GeminiModel      string `toml:"gemini_model"`
	SystemPrompt     string `toml:"system_prompt"` // пусто: встроенная инструкция
	MaxRetries       int    `toml:"max_retries"`
	RetryBaseDelayMs int    `toml:"retry_base_delay_ms"`

	TelegramBotToken string `toml:"telegram_bot_token"`
	WebhookURL       string `toml:"webhook_url"`

	LogDebug bool `toml:"log_debug"`
}

func Default() *Config {
	return &Config{
		Port:             defaultPort,
		GeminiModel:      defaultModel,
		MaxRetries:       llm.DefaultMaxAttempts,
		RetryBaseDelayMs: int(llm.DefaultBaseDelay / time.Millisecond),
	}
}

// Load собирает конфиг и проверяет обязательные поля.
func Load() (*Config, error) {
	return LoadFrom(os.Getenv("APTITUDE_CONFIG"))
}

// LoadFrom: как Load, но путь к TOML задан явно (флаг --config в CLI).
// Пустой путь означает: только значения по умолчанию и окружение.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()
	if path = strings.TrimSpace(path); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	if err := toml.Unmarshal(b, c); err != nil {
		return errors.Wrapf(err, "parse config %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)
	c.SystemPrompt = getEnv("GEMINI_SYSTEM_PROMPT", c.SystemPrompt)
	c.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.WebhookURL = getEnv("WEBHOOK_URL", c.WebhookURL)

	var err error
	if c.MaxRetries, err = getEnvInt("GEMINI_MAX_RETRIES", c.MaxRetries); err != nil {
		return err
	}
	if c.RetryBaseDelayMs, err = getEnvInt("GEMINI_RETRY_BASE_DELAY_MS", c.RetryBaseDelayMs); err != nil {
		return err
	}
	if v := strings.TrimSpace(os.Getenv("LOG_DEBUG")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(err, "bad LOG_DEBUG %q", v)
		}
		c.LogDebug = b
	}
	return nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.GeminiAPIKey) == "" {
		return errors.New("missing required GEMINI_API_KEY")
	}
	if c.MaxRetries < 1 {
		return errors.Errorf("max retries must be at least 1, got %d", c.MaxRetries)
	}
	if c.RetryBaseDelayMs < 0 {
		return errors.Errorf("retry base delay must not be negative, got %d", c.RetryBaseDelayMs)
	}
	return nil
}

// RequireTelegram проверяет настройки, нужные только боту.
func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.TelegramBotToken) == "" {
		return errors.New("missing required TELEGRAM_BOT_TOKEN")
	}
	return nil
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, errors.Wrapf(err, "bad %s %q", k, v)
	}
	return n, nil
}
