package container

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sync/errgroup"
)

// ExitGuards is an explicit exit-time callback registry: one one-shot guard
// per worker, fired together when the host shuts down.
type ExitGuards struct {
	mu     sync.Mutex
	guards map[WorkerID]func()
}

// NewExitGuards creates an empty registry.
func NewExitGuards() *ExitGuards {
	return &ExitGuards{
		guards: make(map[WorkerID]func()),
	}
}

// Register sets the guard for id, replacing an existing one.
func (g *ExitGuards) Register(id WorkerID, guard func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.guards[id] = guard
}

// Unregister drops the guard for id.
func (g *ExitGuards) Unregister(id WorkerID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.guards, id)
}

// Len returns the number of pending guards.
func (g *ExitGuards) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.guards)
}

// Fire runs every pending guard concurrently and waits for them or for ctx.
// Each guard runs at most once; the registry is empty afterwards.
func (g *ExitGuards) Fire(ctx context.Context) error {
	g.mu.Lock()
	pending := g.guards
	g.guards = make(map[WorkerID]func())
	g.mu.Unlock()

	var eg errgroup.Group
	for _, guard := range pending {
		eg.Go(func() error {
			guard()
			return nil
		})
	}

	done := make(chan struct{})
	go func() {
		_ = eg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// NotifyShutdown calls c.Shutdown when one of signals arrives (SIGINT and
// SIGTERM when none are given) or ctx is canceled. The returned stop function
// releases the signal subscription without shutting down.
func NotifyShutdown(ctx context.Context, c *Container, signals ...os.Signal) (stop func()) {
	if len(signals) == 0 {
		signals = []os.Signal{os.Interrupt, syscall.SIGTERM}
	}
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, signals...)

	quit := make(chan struct{})
	var once sync.Once
	go func() {
		select {
		case sig := <-sigChan:
			c.logger.Infof("Received %s, releasing all sessions", sig)
		case <-ctx.Done():
		case <-quit:
			return
		}
		// Shutdown is bounded by the close timeout of each guard.
		_ = c.Shutdown(context.Background())
	}()

	return func() {
		once.Do(func() {
			signal.Stop(sigChan)
			close(quit)
		})
	}
}
