package container

import (
	"context"
	"fmt"
)

// GetSession returns the session bound to w, creating one through the factory
// when there is none. An existing session is returned without a health check.
// Factory errors are returned unchanged.
func (c *Container) GetSession(ctx context.Context, w Worker) (Session, error) {
	if s, ok := c.registry.Get(w.ID()); ok {
		return s, nil
	}

	c.logger.Infof("No session is bound to worker %d, creating one", w.ID())
	return c.create(ctx, w)
}

// GetVerifiedSession is GetSession with a health check. When RecreateOnFailure
// is enabled an existing session is probed first; if it is confirmed gone it
// is released and replaced by a new one. Probe failures that are not
// classified as "gone" are returned and the session is kept.
func (c *Container) GetVerifiedSession(ctx context.Context, w Worker) (Session, error) {
	if !c.settings().RecreateOnFailure {
		return c.GetSession(ctx, w)
	}

	if s, ok := c.registry.Get(w.ID()); ok {
		open, err := c.isStillOpen(s)
		if err != nil {
			return nil, err
		}
		if open {
			return s, nil
		}
		c.logger.Infof("Session %s of worker %d has been closed meanwhile, recreating it", s.ID(), w.ID())
		c.Release(w)
	}
	return c.create(ctx, w)
}

// isStillOpen probes s. Classified failures mean closed; anything else is an
// error.
func (c *Container) isStillOpen(s Session) (bool, error) {
	err := s.Probe()
	if err == nil {
		return true, nil
	}
	if kind := KindOf(err); kind.Gone() {
		c.logger.Debugf("Session %s is %s: %v", s.ID(), kind, err)
		return false, nil
	}
	return false, fmt.Errorf("probe session %s: %w", s.ID(), err)
}

func (c *Container) create(ctx context.Context, w Worker) (Session, error) {
	s, err := c.factory.Create(ctx, c.Proxy())
	if err != nil {
		return nil, err
	}
	c.logger.Infof("Created session %s for worker %d", s.ID(), w.ID())

	s = c.addListeners(s, w.ID())
	c.registry.Put(w.ID(), s)
	c.markForAutoClose(w)
	return s, nil
}

func (c *Container) addListeners(s Session, id WorkerID) Session {
	c.mu.Lock()
	listeners := append([]boundListener(nil), c.listeners...)
	c.mu.Unlock()

	for _, l := range listeners {
		c.logger.Infof("Adding listener %s to session %s", l.name, s.ID())
	}
	return wrapSession(s, id, listeners)
}

// markForAutoClose tracks w for the reaper, makes sure the reaper runs and
// registers the exit guard of w.
func (c *Container) markForAutoClose(w Worker) {
	c.live.Add(w)
	c.startReaper()
	c.guards.Register(w.ID(), func() { c.Release(w) })
}
