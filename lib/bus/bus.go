package bus

import (
	"sync"
	"sync/atomic"

	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("bus")

// DefaultBufferSize is the buffer of every subscription if none is given
const DefaultBufferSize = 64

// Bus is a hot multicast channel. Messages are only delivered to the
// subscriptions existing at the time of Publish, there is no replay.
type Bus[M any] struct {
	subs       *xsync.MapOf[uint64, *Subscription[M]]
	nextID     atomic.Uint64
	bufferSize int

	// mu orders Subscribe against Close
	mu     sync.RWMutex
	closed bool
}

// Subscription receives the messages published after it was created
type Subscription[M any] struct {
	id  uint64
	bus *Bus[M]
	ch  chan M

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

// New creates a bus whose subscriptions buffer up to bufferSize messages.
// A subscriber falling further behind loses messages.
func New[M any](bufferSize int) *Bus[M] {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Bus[M]{
		subs:       xsync.NewMapOf[uint64, *Subscription[M]](),
		bufferSize: bufferSize,
	}
}

// Publish offers m to every current subscription without blocking.
// Returns the number of subscriptions the message was delivered to.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *Bus[M]) Publish(m M) int {
	delivered := 0
	b.subs.Range(func(_ uint64, s *Subscription[M]) bool {
		if s.offer(m) {
			delivered++
		}
		return true
	})
	return delivered
}

// Subscribe creates a new subscription. On a closed bus the returned
// subscription is already closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (b *Bus[M]) Subscribe() *Subscription[M] {
	s := &Subscription[M]{
		id:  b.nextID.Add(1),
		bus: b,
		ch:  make(chan M, b.bufferSize),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		s.close()
		return s
	}
	b.subs.Store(s.id, s)
	return s
}

// Len returns the number of active subscriptions
func (b *Bus[M]) Len() int {
	return b.subs.Size()
}

// Close closes every subscription. Later subscriptions are closed immediately.
func (b *Bus[M]) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.subs.Range(func(id uint64, s *Subscription[M]) bool {
		b.subs.Delete(id)
		s.close()
		return true
	})
}

// --------------------------------------------------------------------------
// Subscription
// --------------------------------------------------------------------------

// C returns the channel delivering the messages. It is closed by Cancel or when the bus closes.
func (s *Subscription[M]) C() <-chan M {
	return s.ch
}

// Cancel removes the subscription from the bus and closes C.
// Calling Cancel more than once is fine.
func (s *Subscription[M]) Cancel() {
	s.bus.subs.Delete(s.id)
	s.close()
}

// Dropped returns the number of messages lost because the buffer was full
func (s *Subscription[M]) Dropped() uint64 {
	return s.dropped.Load()
}

func (s *Subscription[M]) offer(m M) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- m:
		return true
	default:
		if s.dropped.Add(1) == 1 {
			Logger.Warningf("subscription %d is too slow, dropping messages", s.id)
		}
		return false
	}
}

func (s *Subscription[M]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.ch)
	}
}
