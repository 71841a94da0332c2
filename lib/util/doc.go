// Package util provides a lock-free Multi-Producer Single-Consumer (MPSC) queue,
// the task queue of the serial executor.
//
// Features and Guarantees:
//
//   - Lock-Free writes: producers only use atomic operations, the mutex is
//     touched solely to wake a parked consumer
//   - Unbounded Size: Push never blocks, the queue grows as needed
//   - Per producer FIFO: values pushed by one goroutine are delivered in push order.
//     Across producers the order is the order in which the appends completed.
//   - Single Consumer: values are read from the channel returned by Recv()
package util
