package matchmaking

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EventSource wakes the search loop. A wake is a hint that the queue may
// have changed; the loop always re-reads the queue, so spurious wakes are
// harmless and missed wakes are covered by the ticker fallback.
type EventSource interface {
	// Subscribe returns a channel that receives a signal whenever the
	// queue may have changed. The channel closes when ctx is done.
	Subscribe(ctx context.Context) (<-chan struct{}, error)
}

// TickerSource wakes the loop on a fixed interval. It is the fallback
// that bounds matchmaking latency when pub/sub delivery is lost.
type TickerSource struct {
	Interval time.Duration
}

func (t TickerSource) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		ticker := time.NewTicker(t.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// RedisSource wakes the loop on queue-change notifications published over
// a Redis channel.
type RedisSource struct {
	Client  *redis.Client
	Channel string
	Logger  zerolog.Logger
}

func (r RedisSource) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	sub := r.Client.Subscribe(ctx, r.Channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, err
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ch:
				if !ok {
					r.Logger.Warn().Str("channel", r.Channel).Msg("queue subscription closed")
					return
				}
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}
	}()
	return out, nil
}

// MergeSources fans several event sources into one wake channel.
type MergeSources []EventSource

func (m MergeSources) Subscribe(ctx context.Context) (<-chan struct{}, error) {
	out := make(chan struct{}, 1)
	for _, src := range m {
		ch, err := src.Subscribe(ctx)
		if err != nil {
			return nil, err
		}
		go func(ch <-chan struct{}) {
			for range ch {
				select {
				case out <- struct{}{}:
				default:
				}
			}
		}(ch)
	}
	// Sources close their own channels on ctx cancellation; out is left to
	// the garbage collector once the forwarders drain.
	return out, nil
}
