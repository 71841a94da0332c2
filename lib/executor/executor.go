package executor

import (
	"sync"

	"github.com/ValentinKolb/pocket/lib/common"
	"github.com/ValentinKolb/pocket/lib/util"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/sourcegraph/conc/pool"
)

var Logger = logger.GetLogger("executor")

// --------------------------------------------------------------------------
// Inline
// --------------------------------------------------------------------------

// NewInlineExecutor returns an executor running every task on the calling goroutine
func NewInlineExecutor() IExecutor {
	return &inlineExecutorImpl{}
}

type inlineExecutorImpl struct {
	mu     sync.RWMutex
	closed bool
}

func (e *inlineExecutorImpl) Execute(task func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return common.ErrClosed
	}
	task()
	return nil
}

func (e *inlineExecutorImpl) Close() error {
	// waits for running tasks via the write lock
	e.mu.Lock()
	defer e.mu.Unlock()

	e.closed = true
	return nil
}

// --------------------------------------------------------------------------
// Serial
// --------------------------------------------------------------------------

// NewSerialExecutor returns an executor running all tasks one after another on a
// dedicated goroutine. Tasks submitted from one goroutine run in submission order.
func NewSerialExecutor() IExecutor {
	e := &serialExecutorImpl{
		queue: util.NewLockFreeMPSC[func()](),
		done:  make(chan struct{}),
	}
	go e.run()
	return e
}

type serialExecutorImpl struct {
	queue *util.LockFreeMPSC[func()]
	done  chan struct{}

	// mu orders Execute against Close, so no accepted task is dropped by the queue
	mu     sync.RWMutex
	closed bool
}

func (e *serialExecutorImpl) run() {
	defer close(e.done)
	for task := range e.queue.Recv() {
		runRecovered(task)
	}
}

func (e *serialExecutorImpl) Execute(task func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed || !e.queue.Push(task) {
		return common.ErrClosed
	}
	return nil
}

func (e *serialExecutorImpl) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		<-e.done
		return nil
	}
	e.closed = true
	e.queue.Close()
	e.mu.Unlock()

	<-e.done
	Logger.Debugf("serial executor stopped")
	return nil
}

// --------------------------------------------------------------------------
// Pool
// --------------------------------------------------------------------------

// NewPoolExecutor returns an executor running tasks on at most workers goroutines.
// Execute blocks while all workers are busy. Tasks have no ordering guarantee.
func NewPoolExecutor(workers int) IExecutor {
	if workers < 1 {
		workers = 1
	}
	return &poolExecutorImpl{
		pool: pool.New().WithMaxGoroutines(workers),
	}
}

type poolExecutorImpl struct {
	pool *pool.Pool

	mu     sync.RWMutex
	closed bool
}

func (e *poolExecutorImpl) Execute(task func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return common.ErrClosed
	}
	e.pool.Go(func() {
		runRecovered(task)
	})
	return nil
}

func (e *poolExecutorImpl) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()

	// no Go call can happen anymore, Wait may only be called once
	e.pool.Wait()
	Logger.Debugf("pool executor stopped")
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// runRecovered runs a task and keeps the worker alive if it panics
func runRecovered(task func()) {
	defer func() {
		if r := recover(); r != nil {
			Logger.Errorf("task panicked: %v", r)
		}
	}()
	task()
}
