package pocket

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/ValentinKolb/pocket/lib/bus"
	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/encryption"
	"github.com/ValentinKolb/pocket/lib/executor"
	"github.com/ValentinKolb/pocket/lib/serializer"
	"github.com/ValentinKolb/pocket/lib/storage"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("pocket")

// Config assembles a pocket. All parts are fixed for the lifetime of the pocket.
type Config[T any] struct {
	Storage    storage.IStorage          // required
	Serializer serializer.ISerializer[T] // required
	Encryption encryption.IEncryption    // defaults to no encryption
	// Executor runs the storage work. If nil, every operation runs on the calling goroutine.
	Executor executor.IExecutor
	// BusBufferSize is the number of change events buffered per subscriber (default bus.DefaultBufferSize)
	BusBufferSize int
	// ExternalChanges optionally feeds keys changed outside this pocket (e.g. by
	// another process, see fsstorage.Watch) into the change bus until Close.
	ExternalChanges <-chan string
}

type pocketImpl[T any] struct {
	storage    storage.IStorage
	serializer serializer.ISerializer[T]
	encryption encryption.IEncryption
	executor   executor.IExecutor
	changes    *bus.Bus[string]
	closed     atomic.Bool
	stop       chan struct{}
}

// NewPocket creates a new pocket from cfg
func NewPocket[T any](cfg Config[T]) (IPocket[T], error) {
	if cfg.Storage == nil {
		return nil, fmt.Errorf("pocket needs a storage")
	}
	if cfg.Serializer == nil {
		return nil, fmt.Errorf("pocket needs a serializer")
	}
	if cfg.Encryption == nil {
		cfg.Encryption = encryption.NewNoEncryption()
	}

	p := &pocketImpl[T]{
		storage:    cfg.Storage,
		serializer: cfg.Serializer,
		encryption: cfg.Encryption,
		executor:   cfg.Executor,
		changes:    bus.New[string](cfg.BusBufferSize),
		stop:       make(chan struct{}),
	}
	if cfg.ExternalChanges != nil {
		go p.forward(cfg.ExternalChanges)
	}
	return p, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see pocket.IPocket)
// --------------------------------------------------------------------------

func (p *pocketImpl[T]) Put(ctx context.Context, key string, value T) error {
	if err := p.checkKey(key); err != nil {
		return err
	}

	_, err := submit(ctx, p.executor, func() (struct{}, error) {
		data, err := p.serializer.Serialize(value)
		if err != nil {
			return struct{}{}, common.NewSerializationError("serialize", key, err)
		}
		data, err = p.encryption.Encrypt(key, data)
		if err != nil {
			return struct{}{}, common.NewEncryptionError("encrypt", key, err)
		}
		if err := p.storage.Put(key, data); err != nil {
			// written but not flushed, readers already see the new value
			if errors.Is(err, common.ErrNotSynced) {
				p.changes.Publish(key)
			}
			return struct{}{}, common.AsStorageError("put", key, err)
		}
		p.changes.Publish(key)
		return struct{}{}, nil
	})
	return err
}

func (p *pocketImpl[T]) Get(ctx context.Context, key string) (T, bool, error) {
	opt, err := p.GetOptional(ctx, key)
	value, ok := opt.Get()
	return value, ok, err
}

func (p *pocketImpl[T]) GetOrDefault(ctx context.Context, key string, def T) (T, error) {
	opt, err := p.GetOptional(ctx, key)
	if err != nil {
		var zero T
		return zero, err
	}
	return opt.OrElse(def), nil
}

func (p *pocketImpl[T]) GetOptional(ctx context.Context, key string) (Option[T], error) {
	if err := p.checkKey(key); err != nil {
		return None[T](), err
	}

	return submit(ctx, p.executor, func() (Option[T], error) {
		return p.read(key)
	})
}

func (p *pocketImpl[T]) GetAll(ctx context.Context) ([]T, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return submit(ctx, p.executor, p.readAll)
}

func (p *pocketImpl[T]) GetAllKeys(ctx context.Context) ([]string, error) {
	if err := p.checkOpen(); err != nil {
		return nil, err
	}
	return submit(ctx, p.executor, p.listKeys)
}

func (p *pocketImpl[T]) GetCount(ctx context.Context) (int, error) {
	keys, err := p.GetAllKeys(ctx)
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (p *pocketImpl[T]) Delete(ctx context.Context, key string) error {
	if err := p.checkKey(key); err != nil {
		return err
	}

	_, err := submit(ctx, p.executor, func() (struct{}, error) {
		if err := p.storage.Delete(key); err != nil {
			return struct{}{}, common.AsStorageError("delete", key, err)
		}
		p.changes.Publish(key)
		return struct{}{}, nil
	})
	return err
}

func (p *pocketImpl[T]) DeleteAll(ctx context.Context) error {
	if err := p.checkOpen(); err != nil {
		return err
	}

	_, err := submit(ctx, p.executor, func() (struct{}, error) {
		// no rollback on failure, but subscribers learn about every key that is gone
		removed, err := storage.DeleteAllKeys(p.storage)
		for _, key := range removed {
			p.changes.Publish(key)
		}
		if err != nil {
			Logger.Warningf("delete all failed, the pocket may be partially cleared: %v", err)
			return struct{}{}, common.AsStorageError("delete_all", "", err)
		}
		return struct{}{}, nil
	})
	return err
}

func (p *pocketImpl[T]) Contains(ctx context.Context, key string) (bool, error) {
	if err := p.checkKey(key); err != nil {
		return false, err
	}

	return submit(ctx, p.executor, func() (bool, error) {
		ok, err := p.storage.Contains(key)
		if err != nil {
			return false, common.AsStorageError("contains", key, err)
		}
		return ok, nil
	})
}

func (p *pocketImpl[T]) KeyChanges() *bus.Subscription[string] {
	return p.changes.Subscribe()
}

func (p *pocketImpl[T]) Stream(ctx context.Context, key string) *Stream[Option[T]] {
	return startStream(ctx, p.changes,
		func(changed string) bool {
			return changed == key
		},
		func(ctx context.Context) (Option[T], error) {
			return p.GetOptional(ctx, key)
		},
	)
}

func (p *pocketImpl[T]) StreamAll(ctx context.Context) *Stream[[]T] {
	return startStream(ctx, p.changes,
		func(string) bool {
			return true
		},
		p.GetAll,
	)
}

func (p *pocketImpl[T]) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	close(p.stop)
	p.changes.Close()
	Logger.Debugf("pocket closed")
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// forward publishes externally changed keys until the pocket is closed
func (p *pocketImpl[T]) forward(keys <-chan string) {
	for {
		select {
		case <-p.stop:
			return
		case key, ok := <-keys:
			if !ok {
				return
			}
			if storage.ValidateKey(key) == nil {
				p.changes.Publish(key)
			}
		}
	}
}

// checkOpen returns ErrClosed on a closed pocket
func (p *pocketImpl[T]) checkOpen() error {
	if p.closed.Load() {
		return common.ErrClosed
	}
	return nil
}

// checkKey is checkOpen plus key validation
func (p *pocketImpl[T]) checkKey(key string) error {
	if err := p.checkOpen(); err != nil {
		return err
	}
	return storage.ValidateKey(key)
}

// read runs on the executor: get, decrypt, deserialize
func (p *pocketImpl[T]) read(key string) (Option[T], error) {
	data, ok, err := p.storage.Get(key)
	if err != nil {
		return None[T](), common.AsStorageError("get", key, err)
	}
	if !ok {
		return None[T](), nil
	}

	data, err = p.encryption.Decrypt(key, data)
	if err != nil {
		return None[T](), common.NewEncryptionError("decrypt", key, err)
	}
	value, err := p.serializer.Deserialize(data)
	if err != nil {
		return None[T](), common.NewSerializationError("deserialize", key, err)
	}
	return Some(value), nil
}

// readAll runs on the executor
func (p *pocketImpl[T]) readAll() ([]T, error) {
	keys, err := p.listKeys()
	if err != nil {
		return nil, err
	}

	values := make([]T, 0, len(keys))
	for _, key := range keys {
		opt, err := p.read(key)
		if err != nil {
			return nil, err
		}
		// deleted since listing
		if value, ok := opt.Get(); ok {
			values = append(values, value)
		}
	}
	return values, nil
}

// listKeys runs on the executor
func (p *pocketImpl[T]) listKeys() ([]string, error) {
	keys, err := p.storage.ListKeys()
	if err != nil {
		return nil, common.AsStorageError("list", "", err)
	}
	sort.Strings(keys)
	return keys, nil
}

type result[R any] struct {
	value R
	err   error
}

// submit runs fn as one task on exec (inline if nil) and waits for it or ctx
func submit[R any](ctx context.Context, exec executor.IExecutor, fn func() (R, error)) (R, error) {
	var zero R
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	if exec == nil {
		return fn()
	}

	done := make(chan result[R], 1)
	if err := exec.Execute(func() {
		value, err := fn()
		done <- result[R]{value: value, err: err}
	}); err != nil {
		return zero, err
	}

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
