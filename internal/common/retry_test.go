package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
	)
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_ExhaustsRetries(t *testing.T) {
	calls := 0
	failure := errors.New("persistent")
	err := Do(context.Background(), func() error {
		calls++
		return failure
	},
		WithMaxRetries(2),
		WithInitialDelay(time.Millisecond),
	)
	assert.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestDo_RetryIfRejectsError(t *testing.T) {
	calls := 0
	rateLimited := NewError(ErrCodeRateLimit, "限流")
	err := Do(context.Background(), func() error {
		calls++
		return rateLimited
	},
		WithMaxRetries(5),
		WithInitialDelay(time.Millisecond),
		WithRetryIf(func(err error) bool {
			return !HasCode(err, ErrCodeRateLimit)
		}),
	)
	// rate-limit errors must surface immediately, without retries
	assert.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, HasCode(err, ErrCodeRateLimit))
}

func TestDo_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := Do(ctx, func() error {
		calls++
		return errors.New("transient")
	},
		WithMaxRetries(10),
		WithInitialDelay(time.Second),
	)
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDo_NilFunction(t *testing.T) {
	err := Do(context.Background(), nil)
	assert.Error(t, err)
}

func TestCalculateDelay(t *testing.T) {
	d := calculateDelay(1, time.Second, 30*time.Second, 2.0)
	assert.Equal(t, time.Second, d)

	d = calculateDelay(3, time.Second, 30*time.Second, 2.0)
	assert.Equal(t, 4*time.Second, d)

	// capped at maxDelay
	d = calculateDelay(10, time.Second, 30*time.Second, 2.0)
	assert.Equal(t, 30*time.Second, d)
}
