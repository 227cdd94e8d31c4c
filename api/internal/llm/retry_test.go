package llm

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSleeper struct {
	delays []time.Duration
}

func (s *recordingSleeper) Sleep(d time.Duration) { s.delays = append(s.delays, d) }

func testPolicy(s *recordingSleeper) RetryPolicy {
	p := DefaultRetryPolicy()
	p.Sleep = s.Sleep
	return p
}

func TestRetryReturnsAfterTransientFailures(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	got, err := Retry(testPolicy(sleeper), func() (string, error) {
		calls++
		if calls < 3 {
			return "", errors.New("googleapi: Error 503: service unavailable")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{DefaultBaseDelay, 2 * DefaultBaseDelay}, sleeper.delays)
}

func TestRetryStopsOnNonTransientError(t *testing.T) {
	sleeper := &recordingSleeper{}
	denied := errors.New("permission denied")
	calls := 0

	_, err := Retry(testPolicy(sleeper), func() (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("the model is overloaded, try again later")
		}
		return 0, denied
	})

	require.Error(t, err)
	assert.Same(t, denied, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, []time.Duration{DefaultBaseDelay}, sleeper.delays)
}

func TestRetryGivesUpAfterBudget(t *testing.T) {
	sleeper := &recordingSleeper{}
	var last error
	calls := 0

	_, err := Retry(testPolicy(sleeper), func() (struct{}, error) {
		calls++
		last = fmt.Errorf("attempt %d: model overloaded", calls)
		return struct{}{}, last
	})

	require.Error(t, err)
	assert.Same(t, last, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{DefaultBaseDelay, 2 * DefaultBaseDelay}, sleeper.delays)
}

func TestRetryFirstAttemptSuccess(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	got, err := Retry(testPolicy(sleeper), func() (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
}

func TestRetryHonoursTransientFlag(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0

	_, err := Retry(testPolicy(sleeper), func() (string, error) {
		calls++
		if calls == 1 {
			return "", &RemoteCallError{Op: "test", Transient: true, Err: errors.New("resource exhausted")}
		}
		return "done", nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryPermanentRemoteErrorIsNotRetried(t *testing.T) {
	sleeper := &recordingSleeper{}
	calls := 0
	permanent := &RemoteCallError{Op: "test", Code: 400, Err: errors.New("invalid argument")}

	_, err := Retry(testPolicy(sleeper), func() (string, error) {
		calls++
		return "", permanent
	})

	var rce *RemoteCallError
	require.True(t, errors.As(err, &rce))
	assert.Equal(t, 400, rce.Code)
	assert.Equal(t, 1, calls)
	assert.Empty(t, sleeper.delays)
}

func TestRetryWithoutBudget(t *testing.T) {
	calls := 0
	p := RetryPolicy{MaxAttempts: 0, Sleep: func(time.Duration) {}}

	_, err := Retry(p, func() (string, error) {
		calls++
		return "", nil
	})

	assert.True(t, errors.Is(err, ErrMaxRetriesExceeded))
	assert.Zero(t, calls)
}

func TestRetryPolicyDelay(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Zero(t, p.Delay(0))
	assert.Zero(t, RetryPolicy{}.Delay(1))
}
