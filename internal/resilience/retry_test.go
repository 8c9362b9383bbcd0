package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
}

func TestDoVal_SucceedsFirstTry(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 1, calls)
}

func TestDoVal_RetriesTransient(t *testing.T) {
	calls := 0
	got, err := DoVal(context.Background(), fastPolicy(), "op", func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", NewStatusError(errors.New("server busy"), 503)
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestDoVal_GivesUpOnPermanent(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, NewStatusError(errors.New("not found"), 404)
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustsBudget(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastPolicy(), "op", func(ctx context.Context) (int, error) {
		calls++
		return 0, NewStatusError(errors.New("busy"), 429)
	})

	assert.Error(t, err)
	assert.Equal(t, 3, calls)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 429, se.StatusCode)
}

func TestDoVal_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, err := DoVal(ctx, Policy{MaxAttempts: 5, InitialBackoff: time.Minute}, "op", func(ctx context.Context) (int, error) {
		calls++
		cancel()
		return 0, NewStatusError(errors.New("busy"), 503)
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_CustomShouldRetry(t *testing.T) {
	sentinel := errors.New("special")
	p := fastPolicy()
	p.ShouldRetry = func(err error) bool { return errors.Is(err, sentinel) }

	calls := 0
	_, err := DoVal(context.Background(), p, "op", func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, sentinel
		}
		return 0, errors.New("fatal")
	})

	assert.EqualError(t, err, "fatal")
	assert.Equal(t, 2, calls)
}

func TestDo_WrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastPolicy(), "op", func(ctx context.Context) error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestBackoff_CapsAtMax(t *testing.T) {
	p := Policy{InitialBackoff: time.Second, MaxBackoff: 4 * time.Second}.withDefaults()

	assert.Equal(t, time.Second, p.backoff(0))
	assert.Equal(t, 2*time.Second, p.backoff(1))
	assert.Equal(t, 4*time.Second, p.backoff(2))
	assert.Equal(t, 4*time.Second, p.backoff(5))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable status", NewStatusError(errors.New("x"), 502), true},
		{"permanent status", NewStatusError(errors.New("x"), 403), false},
		{"reset by peer text", errors.New("read tcp: connection reset by peer"), true},
		{"plain error", errors.New("parse failure"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsTransient(tc.err))
		})
	}
}
