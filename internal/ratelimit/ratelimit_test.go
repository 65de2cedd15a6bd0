package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeAllowsWithinBurst(t *testing.T) {
	l := NewLimiter("test", 10, 5)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Consume(ctx, 5))
}

func TestConsumeBlocksPastBurst(t *testing.T) {
	l := NewLimiter("test", 1, 1)
	ctx := context.Background()
	require.NoError(t, l.Consume(ctx, 1))

	shortCtx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err := l.Consume(shortCtx, 1)
	assert.Error(t, err)
}

func TestSetRetryAfterDelaysConsume(t *testing.T) {
	l := NewLimiter("test", 1000, 1000)
	l.SetRetryAfter(50 * time.Millisecond)

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, l.Consume(ctx, 1))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestParseIntHeader(t *testing.T) {
	n, ok := ParseIntHeader("1184")
	require.True(t, ok)
	assert.Equal(t, 1184, n)

	_, ok = ParseIntHeader("")
	assert.False(t, ok)

	_, ok = ParseIntHeader("not-a-number")
	assert.False(t, ok)
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	b := NewBackoff(40*time.Millisecond, 100*time.Millisecond, 2.0)
	d0 := b.NextDelay()
	d1 := b.NextDelay()
	d2 := b.NextDelay()
	assert.GreaterOrEqual(t, d0, 40*time.Millisecond)
	assert.Greater(t, d1, d0-5*time.Millisecond)
	assert.LessOrEqual(t, d2, 125*time.Millisecond)
}

func TestBackoffResetRestartsSequence(t *testing.T) {
	b := NewBackoff(10*time.Millisecond, time.Second, 2.0)
	b.NextDelay()
	b.NextDelay()
	b.Reset()
	d := b.NextDelay()
	assert.Less(t, d, 20*time.Millisecond)
}
