// Package container binds one browser session to each worker and owns its
// lifecycle.
//
// A Container lazily creates a session the first time a worker asks for one,
// optionally verifies its health before handing it out again, and guarantees
// the session is eventually destroyed within a bounded time, even when the
// worker disappears without releasing it.
//
// # Lifecycle
//
//  1. Acquire: GetSession or GetVerifiedSession creates a session through the
//     Factory on a registry miss and marks the worker live
//  2. Use: the worker keeps getting the same session back until it is released
//  3. Release: Release, the reaper (dead worker) or an exit guard (shutdown)
//     removes the registry entry and hands the session to the Terminator
//
// # Reaper
//
// The first acquisition starts a single background goroutine that scans the
// live workers every ReapInterval and releases the sessions of workers whose
// Alive method reports false. It runs until Close or Shutdown.
//
// # Exit guards
//
// Go has no per-goroutine shutdown hooks. Each acquiring worker gets an entry
// in an exit-guard registry instead, and the host application must call
// Shutdown (directly or through NotifyShutdown) before exiting so that every
// session still held is destroyed.
//
// # Termination
//
// Destroy runs on its own goroutine and the caller waits at most CloseTimeout.
// A destroy that hangs is abandoned and the session is force-killed when it
// implements Killer. Release therefore never blocks past the budget and never
// fails.
//
// # Example Usage
//
//	c := container.New(factory)
//	defer c.Shutdown(context.Background())
//
//	c.Go(func(w *container.Handle) {
//	    defer c.Release(w)
//	    s, err := c.GetVerifiedSession(ctx, w)
//	    if err != nil {
//	        return
//	    }
//	    // use s
//	})
package container
