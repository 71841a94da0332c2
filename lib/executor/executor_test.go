package executor

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/pocket/lib/common"
)

// testExecutors is a map of executor name to factory function
var testExecutors = map[string]func() IExecutor{
	"Inline": NewInlineExecutor,
	"Serial": NewSerialExecutor,
	"Pool": func() IExecutor {
		return NewPoolExecutor(4)
	},
}

func TestRunsEveryTask(t *testing.T) {
	for name, factory := range testExecutors {
		t.Run(name, func(t *testing.T) {
			e := factory()

			var count atomic.Int64
			var wg sync.WaitGroup
			wg.Add(100)
			for i := 0; i < 100; i++ {
				if err := e.Execute(func() {
					defer wg.Done()
					count.Add(1)
				}); err != nil {
					t.Fatalf("Execute failed: %v", err)
				}
			}
			wg.Wait()

			if err := e.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if got := count.Load(); got != 100 {
				t.Errorf("Expected 100 tasks to run, got %d", got)
			}
		})
	}
}

func TestClosed(t *testing.T) {
	for name, factory := range testExecutors {
		t.Run(name, func(t *testing.T) {
			e := factory()
			if err := e.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}

			ran := false
			err := e.Execute(func() { ran = true })
			if !errors.Is(err, common.ErrClosed) {
				t.Errorf("Expected ErrClosed, got %v", err)
			}
			if ran {
				t.Errorf("Task must not run after Close")
			}

			// closing twice is fine
			if err := e.Close(); err != nil {
				t.Errorf("Second Close failed: %v", err)
			}
		})
	}
}

func TestCloseWaitsForTasks(t *testing.T) {
	for name, factory := range map[string]func() IExecutor{
		"Serial": NewSerialExecutor,
		"Pool":   func() IExecutor { return NewPoolExecutor(2) },
	} {
		t.Run(name, func(t *testing.T) {
			e := factory()

			var finished atomic.Int64
			for i := 0; i < 5; i++ {
				if err := e.Execute(func() {
					time.Sleep(5 * time.Millisecond)
					finished.Add(1)
				}); err != nil {
					t.Fatalf("Execute failed: %v", err)
				}
			}

			if err := e.Close(); err != nil {
				t.Fatalf("Close failed: %v", err)
			}
			if got := finished.Load(); got != 5 {
				t.Errorf("Expected Close to wait for 5 tasks, %d finished", got)
			}
		})
	}
}

func TestInlineRunsOnCaller(t *testing.T) {
	e := NewInlineExecutor()
	defer e.Close()

	ran := false
	if err := e.Execute(func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	// no synchronisation needed
	if !ran {
		t.Errorf("Expected task to have run when Execute returned")
	}
}

func TestSerialOrderAndExclusion(t *testing.T) {
	e := NewSerialExecutor()

	var (
		order   []int
		running atomic.Int32
		overlap atomic.Bool
	)
	for i := 0; i < 200; i++ {
		i := i
		if err := e.Execute(func() {
			if running.Add(1) > 1 {
				overlap.Store(true)
			}
			order = append(order, i)
			running.Add(-1)
		}); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	if overlap.Load() {
		t.Errorf("Serial tasks overlapped")
	}
	if len(order) != 200 {
		t.Fatalf("Expected 200 tasks, got %d", len(order))
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("Expected task %d at position %d, got %d", i, i, v)
		}
	}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	e := NewPoolExecutor(3)

	var running, peak atomic.Int32
	for i := 0; i < 30; i++ {
		if err := e.Execute(func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
		}); err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
	}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}

	if got := peak.Load(); got > 3 {
		t.Errorf("Expected at most 3 concurrent tasks, got %d", got)
	}
}

func TestPanicKeepsWorkerAlive(t *testing.T) {
	for name, factory := range map[string]func() IExecutor{
		"Serial": NewSerialExecutor,
		"Pool":   func() IExecutor { return NewPoolExecutor(1) },
	} {
		t.Run(name, func(t *testing.T) {
			e := factory()

			if err := e.Execute(func() { panic("boom") }); err != nil {
				t.Fatal(err)
			}

			done := make(chan struct{})
			if err := e.Execute(func() { close(done) }); err != nil {
				t.Fatal(err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("Task after panic did not run")
			}

			if err := e.Close(); err != nil {
				t.Fatal(err)
			}
		})
	}
}
