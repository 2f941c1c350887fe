package matchmaking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickerSourceWakes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wake, err := TickerSource{Interval: 5 * time.Millisecond}.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("expected a tick")
	}
}

func TestTickerSourceClosesOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	wake, err := TickerSource{Interval: time.Millisecond}.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-wake:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestMergeSourcesForwards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	merged := MergeSources{
		TickerSource{Interval: 5 * time.Millisecond},
		TickerSource{Interval: time.Hour},
	}
	wake, err := merged.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case _, ok := <-wake:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected a forwarded wake")
	}
}
