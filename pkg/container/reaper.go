package container

import (
	"sync"
	"time"
)

// reaper periodically releases the sessions of workers that died without
// releasing them. A container starts at most one, on its first acquisition.
type reaper struct {
	c        *Container
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newReaper(c *Container) *reaper {
	return &reaper{
		c:    c,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

func (r *reaper) run() {
	defer close(r.done)
	r.c.logger.Debugf("Session reaper started")

	for {
		r.c.reapDeadWorkers()

		timer := time.NewTimer(r.c.settings().ReapInterval)
		select {
		case <-r.stop:
			timer.Stop()
			r.c.logger.Debugf("Session reaper stopped")
			return
		case <-timer.C:
		}
	}
}

// shutdown stops the loop and waits for the current scan to finish.
func (r *reaper) shutdown() {
	r.stopOnce.Do(func() { close(r.stop) })
	<-r.done
}

// reapDeadWorkers releases the session of every tracked worker that is no
// longer alive.
func (c *Container) reapDeadWorkers() {
	for _, w := range c.live.Snapshot() {
		if w.Alive() {
			continue
		}
		if s, ok := c.registry.Get(w.ID()); ok {
			c.logger.Infof("Worker %d is dead, closing session %s", w.ID(), s.ID())
		}
		c.Release(w)
	}
}
