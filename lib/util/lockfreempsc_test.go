package util

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

// TestBasicOperations tests basic push and consume functionality
func TestBasicOperations(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	for i := 0; i < 10; i++ {
		if !q.Push(i) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	for i := 0; i < 10; i++ {
		select {
		case val := <-q.Recv():
			if val != i {
				t.Errorf("Expected %d, got %v", i, val)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for item %d", i)
		}
	}

	select {
	case val := <-q.Recv():
		t.Errorf("Queue should be empty, but got %v", val)
	case <-time.After(10 * time.Millisecond):
		// Expected timeout, queue is empty
	}
}

// TestConcurrentProducers verifies that every value of every producer arrives
// exactly once and in per producer order
func TestConcurrentProducers(t *testing.T) {
	q := NewLockFreeMPSC[[2]int]()
	defer q.Close()

	const numProducers = 10
	const itemsPerProducer = 1000
	totalItems := numProducers * itemsPerProducer

	done := make(chan struct{})
	last := make([]int, numProducers)
	for i := range last {
		last[i] = -1
	}
	receivedCount := 0

	go func() {
		defer close(done)
		for receivedCount < totalItems {
			select {
			case val := <-q.Recv():
				producer, seq := val[0], val[1]
				if seq != last[producer]+1 {
					t.Errorf("Producer %d: expected item %d, got %d", producer, last[producer]+1, seq)
					return
				}
				last[producer] = seq
				receivedCount++
			case <-time.After(2 * time.Second):
				t.Errorf("Timeout waiting for items, received %d of %d", receivedCount, totalItems)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(producerID int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				if !q.Push([2]int{producerID, i}) {
					t.Errorf("Producer %d failed to push item %d", producerID, i)
				}
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Timeout waiting for consumer to finish")
	}

	if receivedCount != totalItems {
		t.Errorf("Expected %d items, got %d", totalItems, receivedCount)
	}
}

// TestCloseQueue verifies closing behavior
func TestCloseQueue(t *testing.T) {
	q := NewLockFreeMPSC[int]()

	for i := 0; i < 5; i++ {
		q.Push(i)
	}

	q.Close()

	if q.Push(100) {
		t.Error("Should not be able to push after queue is closed")
	}
	if !q.IsClosed() {
		t.Error("Expected queue to report closed")
	}

	// existing items are still delivered
	for i := 0; i < 5; i++ {
		select {
		case val := <-q.Recv():
			if val != i {
				t.Errorf("Expected %d, got %v", i, val)
			}
		case <-time.After(time.Second):
			t.Fatalf("Timeout waiting for item %d after close", i)
		}
	}

	if _, ok := <-q.Recv(); ok {
		t.Error("Channel should be closed but is still open")
	}

	finished := make(chan struct{})
	go func() {
		q.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the queue was drained")
	}
}

// TestCloseIdleQueue verifies that a parked consumer wakes up on Close
func TestCloseIdleQueue(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	time.Sleep(10 * time.Millisecond)

	q.Close()

	select {
	case _, ok := <-q.Recv():
		if ok {
			t.Error("Expected closed channel")
		}
	case <-time.After(time.Second):
		t.Fatal("Consumer did not stop after Close")
	}
}

// TestNoLostWakeup pushes single items into an idle queue over and over,
// every push has to wake the parked consumer
func TestNoLostWakeup(t *testing.T) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	for i := 0; i < 2000; i++ {
		q.Push(i)
		select {
		case val := <-q.Recv():
			if val != i {
				t.Fatalf("Expected %d, got %d", i, val)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("Item %d was never delivered", i)
		}
	}
}

// TestSelectStatement tests the queue in a select statement
func TestSelectStatement(t *testing.T) {
	q := NewLockFreeMPSC[string]()
	defer q.Close()

	otherChan := make(chan int, 1)
	otherChan <- 42

	select {
	case val := <-q.Recv():
		t.Errorf("Should not receive from empty queue, got %v", val)
	case <-otherChan:
		// Expected path
	}

	q.Push("test")
	if q.Len() > 1 {
		t.Errorf("Expected at most one queued item, got %d", q.Len())
	}

	select {
	case val := <-q.Recv():
		if val != "test" {
			t.Errorf("Expected 'test', got %v", val)
		}
	case <-time.After(time.Second):
		t.Error("Timeout waiting for item from queue")
	}
}

// BenchmarkSingleProducer benchmarks the queue with a single producer
func BenchmarkSingleProducer(b *testing.B) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	go func() {
		for range q.Recv() {
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Push(i)
	}
}

// BenchmarkMultiProducer benchmarks the queue with multiple producers
func BenchmarkMultiProducer(b *testing.B) {
	q := NewLockFreeMPSC[int]()
	defer q.Close()

	go func() {
		for range q.Recv() {
		}
	}()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.Push(i)
			i++
		}
	})
}
