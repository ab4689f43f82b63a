package worker

import "errors"

var (
	errQueueFull   = errors.New("ask log queue is full")
	errPoolStopped = errors.New("ask log pool is stopped")
)
