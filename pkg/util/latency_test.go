package util

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulate(t *testing.T) {
	t.Run("Zero duration returns immediately", func(t *testing.T) {
		assert.NoError(t, Simulate(context.Background(), 0))
	})

	t.Run("Waits for the duration", func(t *testing.T) {
		start := time.Now()
		assert.NoError(t, Simulate(context.Background(), 20*time.Millisecond))
		assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
	})

	t.Run("Cancelled context stops waiting", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := Simulate(ctx, time.Minute)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestNewID(t *testing.T) {
	a := NewID("candidate")
	b := NewID("candidate")

	assert.True(t, strings.HasPrefix(a, "candidate-"))
	assert.NotEqual(t, a, b)
}
