package executor

// IExecutor is an execution context for the storage work of a pocket.
type IExecutor interface {
	// Execute schedules task. It returns common.ErrClosed after Close and never runs the task then.
	Execute(task func()) error
	// Close stops accepting tasks and waits until every accepted task has finished.
	Close() error
}
