package main

import (
	"context"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	pollTimeoutSec = 30
	pollBaseDelay  = 1 * time.Second
	pollMaxDelay   = 15 * time.Second
	pollIdleDelay  = 200 * time.Millisecond
)

type updateSource interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

// poller: устойчивый long polling, ошибки Telegram не роняют процесс.
type poller struct {
	bot   updateSource
	log   *zap.Logger
	sleep func(ctx context.Context, d time.Duration) bool
}

func (p *poller) run(ctx context.Context, handle func(tgbotapi.Update)) {
	offset := 0
	for {
		if ctx.Err() != nil {
			p.log.Info("polling: context cancelled")
			return
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = pollTimeoutSec

		updates, err := p.bot.GetUpdates(u)
		if err != nil {
			d := clampDelay(retryDelayFromError(err))
			p.log.Warn("polling error", zap.Error(err), zap.Duration("retry_in", d))
			if !p.sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(upd)
		}

		if len(updates) == 0 && !p.sleep(ctx, pollIdleDelay) {
			return
		}
	}
}

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // 429 от Telegram
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return pollBaseDelay
}

func clampDelay(d time.Duration) time.Duration {
	if d < pollBaseDelay {
		return pollBaseDelay
	}
	if d > pollMaxDelay {
		return pollMaxDelay
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
