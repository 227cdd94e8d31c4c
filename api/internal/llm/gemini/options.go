package gemini

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Option customizes the engine at construction time.
type Option func(*Engine)

// WithModel overrides the default model name.
func WithModel(model string) Option {
	return func(e *Engine) {
		if m := strings.TrimSpace(model); m != "" {
			e.model = m
		}
	}
}

// WithGenerator replaces the genai model (tests, alternative transports).
func WithGenerator(gen Generator) Option {
	return func(e *Engine) {
		e.gen = gen
	}
}

// WithSystemPrompt overrides the instruction prepended to every request.
func WithSystemPrompt(system string) Option {
	return func(e *Engine) {
		if s := strings.TrimSpace(system); s != "" {
			e.system = s
		}
	}
}

// WithRetry overrides the attempt budget and the linear backoff base.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(e *Engine) {
		e.retry.MaxAttempts = maxAttempts
		e.retry.BaseDelay = baseDelay
	}
}

// WithSleeper overrides how retry waits are performed (useful for tests).
func WithSleeper(sleep func(time.Duration)) Option {
	return func(e *Engine) {
		e.retry.Sleep = sleep
	}
}

// WithFileReader overrides how attachment files are read.
func WithFileReader(read func(string) ([]byte, error)) Option {
	return func(e *Engine) {
		if read != nil {
			e.readFile = read
		}
	}
}

// WithClock overrides the timestamp source of the analysis results.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}
