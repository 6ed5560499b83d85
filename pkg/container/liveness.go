package container

import "sync"

// Liveness tracks the workers that claimed a session so the reaper can find
// the ones that died without releasing it.
type Liveness struct {
	mu      sync.Mutex
	workers map[WorkerID]Worker
}

// NewLiveness creates an empty tracker.
func NewLiveness() *Liveness {
	return &Liveness{
		workers: make(map[WorkerID]Worker),
	}
}

// Add tracks w. Adding a tracked worker again is a no-op.
func (l *Liveness) Add(w Worker) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.workers[w.ID()] = w
}

// Remove stops tracking id and reports whether it was tracked.
func (l *Liveness) Remove(id WorkerID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.workers[id]
	delete(l.workers, id)
	return ok
}

// Contains reports whether id is tracked.
func (l *Liveness) Contains(id WorkerID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.workers[id]
	return ok
}

// Snapshot returns the tracked workers. The slice is a copy and may be
// iterated while the tracker changes.
func (l *Liveness) Snapshot() []Worker {
	l.mu.Lock()
	defer l.mu.Unlock()

	workers := make([]Worker, 0, len(l.workers))
	for _, w := range l.workers {
		workers = append(workers, w)
	}
	return workers
}

// Len returns the number of tracked workers.
func (l *Liveness) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.workers)
}
