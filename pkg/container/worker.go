package container

import (
	"sync"
	"sync/atomic"
)

// WorkerID identifies a worker for its whole lifetime.
type WorkerID uint64

// Worker is the execution unit a session is bound to.
type Worker interface {
	ID() WorkerID

	// Alive must not block. The reaper calls it on every scan.
	Alive() bool
}

var lastWorkerID atomic.Uint64

// Handle is the stock Worker: alive until Exit is called.
type Handle struct {
	id   WorkerID
	done chan struct{}
	once sync.Once
}

// NewWorker returns a live handle with a process-unique ID.
func NewWorker() *Handle {
	return &Handle{
		id:   WorkerID(lastWorkerID.Add(1)),
		done: make(chan struct{}),
	}
}

// ID returns the worker identity.
func (h *Handle) ID() WorkerID {
	return h.id
}

// Alive reports whether Exit has not been called yet.
func (h *Handle) Alive() bool {
	select {
	case <-h.done:
		return false
	default:
		return true
	}
}

// Exit marks the worker as terminated. Safe to call multiple times.
func (h *Handle) Exit() {
	h.once.Do(func() { close(h.done) })
}

// Done is closed once the worker has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
