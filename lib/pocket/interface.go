package pocket

import (
	"context"

	"github.com/ValentinKolb/pocket/lib/bus"
)

// IPocket is a typed key-value store with change notification.
//
// Every blocking method validates the key first, then runs its storage work as
// one task on the configured executor and waits for it or for ctx. When ctx
// ends first, ctx.Err() is returned, but the task may still complete (and emit
// its change event) afterwards.
//
// Errors are *common.Error values matching common.ErrStorage, common.ErrSerialization
// or common.ErrEncryption. A missing key is never an error. After Close every
// method returns common.ErrClosed.
type IPocket[T any] interface {
	// Put stores value under key and emits key on the change bus once the value is visible.
	Put(ctx context.Context, key string, value T) error
	// Get returns the value for a key. The boolean return value indicates whether the key exists.
	Get(ctx context.Context, key string) (T, bool, error)
	// GetOrDefault returns the value for a key, or def if the key does not exist.
	GetOrDefault(ctx context.Context, key string, def T) (T, error)
	// GetOptional returns the value for a key wrapped in an Option.
	GetOptional(ctx context.Context, key string) (Option[T], error)
	// GetAll returns the values of all keys, sorted by key. Keys removed while
	// reading are skipped.
	GetAll(ctx context.Context) ([]T, error)
	// GetAllKeys returns all keys in ascending order.
	GetAllKeys(ctx context.Context) ([]string, error)
	// GetCount returns the number of keys.
	GetCount(ctx context.Context) (int, error)
	// Delete removes a key. The key is emitted on the change bus even if it did not exist.
	Delete(ctx context.Context, key string) error
	// DeleteAll removes every key and emits each removed key, including keys put
	// while the clear was running. On partial failure only the keys that are
	// actually gone are emitted.
	DeleteAll(ctx context.Context) error
	// Contains returns whether the key exists.
	Contains(ctx context.Context, key string) (bool, error)

	// KeyChanges subscribes to the raw feed of changed keys. The caller must
	// Cancel the subscription when done.
	KeyChanges() *bus.Subscription[string]
	// Stream emits the current value of key, then the value after every change of key.
	// The stream ends when ctx is done, Cancel is called or the pocket is closed.
	Stream(ctx context.Context, key string) *Stream[Option[T]]
	// StreamAll emits GetAll, then GetAll again after every change of any key.
	// This re-reads the whole store on every write.
	StreamAll(ctx context.Context) *Stream[[]T]

	// Close ends all streams and subscriptions. The storage and executor stay
	// open, they are owned by the caller.
	Close() error
}
