package pocket

import (
	"context"
	"errors"

	"github.com/ValentinKolb/pocket/lib/bus"
	"github.com/ValentinKolb/pocket/lib/common"
)

// Stream is a live sequence of values: the current state first, then the
// state after every relevant change.
//
// Values are delivered on C. A consumer that does not keep up loses change
// events (see package bus), but every value it receives was read after the
// change it reacts to.
type Stream[V any] struct {
	c      chan V
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// C returns the channel delivering the values. It is closed when the stream ends.
func (s *Stream[V]) C() <-chan V {
	return s.c
}

// Cancel stops the stream and waits until it has released its subscription.
// C is closed when Cancel returns.
//
// Thread-safety: This method is thread-safe and can be called more than once.
func (s *Stream[V]) Cancel() {
	s.cancel()
	<-s.done
}

// Done is closed when the stream ended
func (s *Stream[V]) Done() <-chan struct{} {
	return s.done
}

// Err returns the error that ended the stream, nil if it was cancelled or the
// pocket (or its executor) was closed. Only valid after Done is closed.
func (s *Stream[V]) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// startStream subscribes before anything is read, so no change after the call returns is missed.
// fetch is called once for the initial value and once per key accepted by match.
func startStream[V any](ctx context.Context, b *bus.Bus[string], match func(key string) bool, fetch func(ctx context.Context) (V, error)) *Stream[V] {
	ctx, cancel := context.WithCancel(ctx)
	s := &Stream[V]{
		c:      make(chan V),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	sub := b.Subscribe()

	go func() {
		defer close(s.done)
		defer close(s.c)
		defer sub.Cancel()
		defer cancel()

		if !s.emit(ctx, fetch) {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case key, ok := <-sub.C():
				if !ok {
					return
				}
				if !match(key) {
					continue
				}
				if !s.emit(ctx, fetch) {
					return
				}
			}
		}
	}()

	return s
}

// emit fetches the current value and hands it to the consumer.
// Returns false if the stream has to end.
func (s *Stream[V]) emit(ctx context.Context, fetch func(ctx context.Context) (V, error)) bool {
	v, err := fetch(ctx)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, common.ErrClosed) {
			Logger.Warningf("stream ended by refetch error: %v", err)
			s.err = err
		}
		return false
	}

	select {
	case s.c <- v:
		return true
	case <-ctx.Done():
		return false
	}
}
