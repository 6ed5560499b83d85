package container

import "errors"

// sessionError is an immutable error type backed by a string constant so the
// classified failures below can be declared const and matched with errors.Is.
type sessionError string

// Error implements the error interface.
func (e sessionError) Error() string {
	return string(e)
}

// Classified failures. Session implementations wrap these (fmt.Errorf with %w)
// to tell the container that the remote session is confirmed gone.
const (
	// ErrUnreachable means the remote browser cannot be reached anymore.
	ErrUnreachable = sessionError("session unreachable")

	// ErrSessionNotFound means the remote end no longer knows the session.
	ErrSessionNotFound = sessionError("session not found")

	// ErrWindowNotFound means the window or page the session drove is gone.
	ErrWindowNotFound = sessionError("window not found")
)

// Kind classifies a session failure.
type Kind int

const (
	// KindOther is any failure the container has not classified.
	KindOther Kind = iota
	KindUnreachable
	KindSessionNotFound
	KindWindowNotFound
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindSessionNotFound:
		return "session-not-found"
	case KindWindowNotFound:
		return "window-not-found"
	default:
		return "other"
	}
}

// Gone reports whether the kind means the session is confirmed dead.
func (k Kind) Gone() bool {
	return k != KindOther
}

// KindOf classifies err by looking for one of the classified failures in its
// chain. A nil error is KindOther.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrUnreachable):
		return KindUnreachable
	case errors.Is(err, ErrSessionNotFound):
		return KindSessionNotFound
	case errors.Is(err, ErrWindowNotFound):
		return KindWindowNotFound
	default:
		return KindOther
	}
}
