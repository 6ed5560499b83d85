package container

import "context"

// Session is the external resource owned by one worker at a time.
type Session interface {
	// ID returns a short description used in log lines.
	ID() string

	// Probe is a lightweight liveness check. It returns nil while the session
	// is usable and an error wrapping ErrUnreachable, ErrSessionNotFound or
	// ErrWindowNotFound once the remote session has vanished.
	Probe() error

	// Destroy shuts the session down gracefully. An error wrapping
	// ErrUnreachable means it was already gone.
	Destroy() error
}

// Killer is implemented by sessions that can be terminated forcibly after a
// graceful Destroy failed or hung.
type Killer interface {
	ForceKill() error
}

// Proxy describes the proxy a factory should route new sessions through.
type Proxy struct {
	Server   string
	Bypass   []string
	Username string
	Password string
}

// Factory creates sessions. Create may block; its errors are returned to the
// caller of GetSession unchanged.
type Factory interface {
	Create(ctx context.Context, proxy *Proxy) (Session, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(ctx context.Context, proxy *Proxy) (Session, error)

// Create calls f.
func (f FactoryFunc) Create(ctx context.Context, proxy *Proxy) (Session, error) {
	return f(ctx, proxy)
}

// Unwrap returns the innermost session beneath any listener wrappers.
func Unwrap(s Session) Session {
	for {
		w, ok := s.(interface{ Unwrap() Session })
		if !ok {
			return s
		}
		s = w.Unwrap()
	}
}
