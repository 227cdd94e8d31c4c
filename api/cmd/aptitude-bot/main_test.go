package main

import (
	"context"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestRetryDelayFromError(t *testing.T) {
	assert.Zero(t, retryDelayFromError(nil))
	assert.Equal(t, 7*time.Second, retryDelayFromError(errors.New("Too Many Requests: retry after 7")))
	assert.Equal(t, 3*time.Second, retryDelayFromError(errors.New("too many requests")))
	assert.Equal(t, 2*time.Second, retryDelayFromError(errors.Wrap(timeoutErr{}, "get updates")))
	assert.Equal(t, time.Second, retryDelayFromError(errors.New("bad gateway")))

	assert.Equal(t, pollMaxDelay, clampDelay(retryDelayFromError(errors.New("too many requests: retry after 120"))))
	assert.Equal(t, pollBaseDelay, clampDelay(0))
}

func TestShortHashIsStable(t *testing.T) {
	a := shortHash("123:token")
	assert.Len(t, a, 16)
	assert.Equal(t, a, shortHash("123:token"))
	assert.NotEqual(t, a, shortHash("123:other"))
}

type scriptedSource struct {
	calls   []int
	results [][]tgbotapi.Update
	errs    []error
}

func (s *scriptedSource) GetUpdates(cfg tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	i := len(s.calls)
	s.calls = append(s.calls, cfg.Offset)
	if i >= len(s.results) {
		return nil, nil
	}
	return s.results[i], s.errs[i]
}

func TestPollerAdvancesOffsetAndBacksOff(t *testing.T) {
	src := &scriptedSource{
		results: [][]tgbotapi.Update{
			{{UpdateID: 10}, {UpdateID: 11}},
			nil,
			{{UpdateID: 12}},
		},
		errs: []error{nil, errors.New("too many requests: retry after 2"), nil},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var slept []time.Duration
	p := &poller{bot: src, log: zap.NewNop(), sleep: func(_ context.Context, d time.Duration) bool {
		slept = append(slept, d)
		return false
	}}

	var seen []int
	p.run(ctx, func(u tgbotapi.Update) { seen = append(seen, u.UpdateID) })

	assert.Equal(t, []int{10, 11}, seen)
	require.Len(t, src.calls, 2)
	assert.Equal(t, []int{0, 12}, src.calls)
	assert.Equal(t, []time.Duration{2 * time.Second}, slept)
}

func TestLoadConfigRequiresBotToken(t *testing.T) {
	t.Setenv("APTITUDE_CONFIG", "")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "")

	_, err := loadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")

	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "123:abc", cfg.TelegramBotToken)
}
