package fetch

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BudgetRefusal(t *testing.T) {
	l := NewLimiter(0, 2)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	err := l.Acquire(ctx)
	assert.ErrorIs(t, err, ErrBudgetExhausted)
	assert.Equal(t, 2, l.Used())
	assert.Equal(t, 0, l.Remaining())
}

func TestLimiter_Uncapped(t *testing.T) {
	l := NewLimiter(0, 0)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, l.Acquire(ctx))
	}
	assert.Equal(t, 10, l.Used())
	assert.Equal(t, -1, l.Remaining())
}

func TestLimiter_EnforcesDelay(t *testing.T) {
	l := NewLimiter(50*time.Millisecond, 0)
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_ContextCanceled(t *testing.T) {
	l := NewLimiter(time.Hour, 0)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	err := l.Acquire(canceled)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrBudgetExhausted)
}
