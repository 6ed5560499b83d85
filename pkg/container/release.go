package container

// Release destroys the session of w and forgets about it. It is a no-op when
// w owns no session and it never fails. Concurrent releases of the same
// worker destroy the session once: only the caller that removes the registry
// entry proceeds. With RetainOpen the session is forgotten but left running.
func (c *Container) Release(w Worker) {
	c.live.Remove(w.ID())
	c.guards.Unregister(w.ID())

	s, ok := c.registry.Remove(w.ID())
	if !ok {
		return
	}

	if c.settings().RetainOpen {
		c.logger.Infof("Keeping session %s of worker %d open", s.ID(), w.ID())
		return
	}
	c.terminator().Terminate(s)
}
