package main

import (
	"context"
	"io"
	"sync"

	"go.uber.org/zap"

	"aptitude-helper/api/internal/config"
	"aptitude-helper/api/internal/llm"
	"aptitude-helper/api/internal/llm/gemini"
	"aptitude-helper/api/internal/logger"
)

type engineFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (llm.Engine, error)

type commandContext struct {
	configFlag string
	debugFlag  bool

	newEngine engineFactory

	engineOnce sync.Once
	engine     llm.Engine
	engineErr  error
	log        *zap.Logger
}

// newCommandContext prepares lazy engine construction; nil factory means Gemini.
func newCommandContext(factory engineFactory) *commandContext {
	if factory == nil {
		factory = newGeminiEngine
	}
	return &commandContext{newEngine: factory}
}

func newGeminiEngine(ctx context.Context, cfg *config.Config, log *zap.Logger) (llm.Engine, error) {
	eng, err := gemini.New(ctx, cfg.GeminiAPIKey,
		gemini.WithModel(cfg.GeminiModel),
		gemini.WithSystemPrompt(cfg.SystemPrompt),
		gemini.WithRetry(cfg.MaxRetries, cfg.RetryBaseDelay()),
		gemini.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	return eng, nil
}

// ensureEngine loads the config and builds the engine once per process.
// Logs go to stderr so stdout stays machine-readable.
func (c *commandContext) ensureEngine(ctx context.Context, stderr io.Writer) (llm.Engine, error) {
	c.engineOnce.Do(func() {
		load := config.Load
		if c.configFlag != "" {
			load = func() (*config.Config, error) { return config.LoadFrom(c.configFlag) }
		}
		cfg, err := load()
		if err != nil {
			c.engineErr = err
			return
		}
		c.log = logger.NewWithWriter(stderr, c.debugFlag || cfg.LogDebug)
		c.engine, c.engineErr = c.newEngine(ctx, cfg, c.log.Named("gemini"))
	})
	return c.engine, c.engineErr
}

func (c *commandContext) close() {
	if cl, ok := c.engine.(io.Closer); ok {
		_ = cl.Close()
	}
	if c.log != nil {
		_ = c.log.Sync()
	}
}
