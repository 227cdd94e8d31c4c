package llm

import (
	"time"

	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 2 * time.Second
)

// RetryPolicy controls Retry. The zero value of Sleep means time.Sleep, a nil
// Logger means no logging and a nil Classify means IsTransient.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Sleep       func(time.Duration)
	Classify    func(error) bool
	Logger      *zap.Logger
}

// DefaultRetryPolicy returns 3 attempts with a 2s linear backoff base.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
	}
}

// Delay returns the wait before the attempt that follows attempt (1-based):
// attempt × BaseDelay.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 || p.BaseDelay <= 0 {
		return 0
	}
	return time.Duration(attempt) * p.BaseDelay
}

type retryState struct {
	attempt int
	lastErr error
}

// Retry runs op until it succeeds, fails with a non-transient error, or the
// attempt budget is spent. Non-transient errors are returned unchanged after
// the attempt that produced them; after the last transient failure the last
// error is returned. Each call keeps its own state.
func Retry[T any](policy RetryPolicy, op func() (T, error)) (T, error) {
	var zero T
	log := policy.Logger
	if log == nil {
		log = zap.NewNop()
	}
	classify := policy.Classify
	if classify == nil {
		classify = IsTransient
	}
	sleep := policy.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	st := retryState{}
	for st.attempt = 1; st.attempt <= policy.MaxAttempts; st.attempt++ {
		res, err := op()
		if err == nil {
			return res, nil
		}
		st.lastErr = err
		log.Warn("attempt failed", zap.Int("attempt", st.attempt), zap.Error(err))

		if !classify(err) {
			return zero, err
		}
		if st.attempt >= policy.MaxAttempts {
			break
		}
		delay := policy.Delay(st.attempt)
		log.Info("retrying", zap.Int("next_attempt", st.attempt+1), zap.Duration("delay", delay))
		sleep(delay)
	}

	if st.lastErr == nil {
		return zero, ErrMaxRetriesExceeded
	}
	return zero, st.lastErr
}
