// Package executor provides the execution contexts a pocket runs its storage
// work on. Every pocket operation is submitted as exactly one task; the caller
// waits for the task to finish (or for its context to be cancelled).
//
// Implementations:
//
//   - Inline: runs the task synchronously on the calling goroutine. Used when
//     no executor is configured.
//
//   - Serial: one dedicated goroutine fed by a util.LockFreeMPSC queue. Tasks
//     never overlap and tasks submitted by one goroutine run in submission order.
//
//   - Pool: at most n goroutines (sourcegraph/conc pool). Submitting blocks while
//     all workers are busy, which bounds the amount of concurrent storage work.
//
// Close stops accepting tasks (Execute then returns common.ErrClosed) and waits
// for all accepted tasks. A task that panics on the serial or pool executor is
// logged and does not take the worker down.
package executor
