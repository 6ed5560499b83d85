package container

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/entrhq/sessionkeeper/pkg/logging"
)

// Logger is the logging surface the container needs. *logging.Logger
// satisfies it.
type Logger interface {
	Debugf(format string, v ...interface{})
	Infof(format string, v ...interface{})
	Warnf(format string, v ...interface{})
	Errorf(format string, v ...interface{})
}

// Container owns one session per worker.
//
// The registry, the liveness set, the exit guards and the reaper flag are the
// only shared mutable state; a session itself is only ever used by the worker
// that owns it.
type Container struct {
	factory  Factory
	settings func() Settings
	logger   Logger

	registry *Registry
	live     *Liveness
	guards   *ExitGuards

	mu        sync.Mutex // guards proxy, listeners and reaper start
	proxy     *Proxy
	listeners []boundListener

	reaperStarted atomic.Bool
	reaper        *reaper
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger. The default writes to the sessionkeeper log file.
func WithLogger(l Logger) Option {
	return func(c *Container) {
		c.logger = l
	}
}

// WithSettings sets the settings source. It is called every time a setting is
// needed. The default is GlobalSettings. A non-positive CloseTimeout or
// ReapInterval it returns is replaced by the default.
func WithSettings(source func() Settings) Option {
	return func(c *Container) {
		c.settings = source
	}
}

// New creates a container producing sessions with factory.
func New(factory Factory, opts ...Option) *Container {
	c := &Container{
		factory:  factory,
		settings: GlobalSettings,
		registry: NewRegistry(),
		live:     NewLiveness(),
		guards:   NewExitGuards(),
	}
	for _, opt := range opts {
		opt(c)
	}
	source := c.settings
	c.settings = func() Settings { return source().withDefaults() }
	if c.logger == nil {
		// NewLogger falls back to stderr on error.
		c.logger, _ = logging.NewLogger("container")
	}
	return c
}

// HasSession reports whether w currently owns a session.
func (c *Container) HasSession(w Worker) bool {
	return c.registry.Has(w.ID())
}

// CurrentSession returns the session bound to w without creating one.
func (c *Container) CurrentSession(w Worker) (Session, bool) {
	return c.registry.Get(w.ID())
}

// SetSession binds an externally created session to w and returns it. The
// worker is tracked like one whose session the container created. A session
// it replaces is left alone: whoever injected it still owns it.
func (c *Container) SetSession(w Worker, s Session) Session {
	if prev, ok := c.registry.Get(w.ID()); ok && prev != s {
		c.logger.Warnf("Replacing session %s of worker %d with %s without closing it", prev.ID(), w.ID(), s.ID())
	}
	c.registry.Put(w.ID(), s)
	c.markForAutoClose(w)
	return s
}

// SetProxy sets the proxy passed to the factory for sessions created from now on.
func (c *Container) SetProxy(p *Proxy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.proxy = p
}

// Proxy returns the configured proxy, or nil.
func (c *Container) Proxy() *Proxy {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.proxy
}

// AddListener registers a listener. It only affects sessions created after
// the call.
func (c *Container) AddListener(spec ListenerSpec) error {
	bound, err := compileListener(spec)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, bound)
	return nil
}

// Workers returns the number of workers currently tracked as owning a session.
func (c *Container) Workers() int {
	return c.live.Len()
}

// Go runs fn on a new goroutine with a fresh worker handle. The handle exits
// when fn returns; a session fn did not release is then reclaimed by the reaper.
func (c *Container) Go(fn func(w *Handle)) *Handle {
	h := NewWorker()
	go func() {
		defer h.Exit()
		fn(h)
	}()
	return h
}

// Close stops the reaper without releasing anything. It cannot be restarted.
func (c *Container) Close() {
	// Take the start lock so a concurrent first acquisition cannot start a
	// reaper after this point.
	c.mu.Lock()
	r := c.reaper
	c.reaperStarted.Store(true)
	c.mu.Unlock()

	if r != nil {
		r.shutdown()
	}
}

// Shutdown stops the reaper and fires the exit guard of every worker still
// holding a session. It is the integration point hosts must call before
// exiting. It returns ctx's error if the guards did not finish in time.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Close()
	c.logger.Infof("Shutting down, %d session(s) still held", c.guards.Len())
	return c.guards.Fire(ctx)
}

func (c *Container) terminator() *Terminator {
	settings := c.settings()
	return &Terminator{
		Timeout:       settings.CloseTimeout,
		SlowThreshold: settings.SlowCloseThreshold,
		Logger:        c.logger,
	}
}

// startReaper starts the reaper on the first call. Later calls are cheap.
func (c *Container) startReaper() {
	if c.reaperStarted.Load() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reaperStarted.Load() {
		return
	}
	c.reaper = newReaper(c)
	go c.reaper.run()
	c.reaperStarted.Store(true)
}
