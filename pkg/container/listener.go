package container

import (
	"fmt"
	"time"

	"github.com/gobwas/glob"
)

// Operation names reported to listeners.
const (
	OpProbe   = "session.probe"
	OpDestroy = "session.destroy"
	OpKill    = "session.kill"
)

// Phase tells whether an event is emitted before or after the operation.
type Phase int

const (
	PhaseBefore Phase = iota
	PhaseAfter
)

// Event describes one operation on a listener-wrapped session.
type Event struct {
	Op      string
	Phase   Phase
	Worker  WorkerID
	Session string
	// Err and Elapsed are only set on PhaseAfter events.
	Err     error
	Elapsed time.Duration
}

// Listener observes operations on sessions.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Event)

// OnEvent calls f.
func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}

// ListenerSpec registers a listener for the operations matching a glob
// pattern such as "session.*" ("." separates segments). An empty pattern
// matches every operation.
type ListenerSpec struct {
	Name       string
	Operations string
	Listener   Listener
}

type boundListener struct {
	name    string
	matcher glob.Glob
	l       Listener
}

func compileListener(spec ListenerSpec) (boundListener, error) {
	if spec.Listener == nil {
		return boundListener{}, fmt.Errorf("listener %q has no callback", spec.Name)
	}
	pattern := spec.Operations
	if pattern == "" {
		pattern = "**"
	}
	g, err := glob.Compile(pattern, '.')
	if err != nil {
		return boundListener{}, fmt.Errorf("invalid operations pattern %q for listener %q: %w", pattern, spec.Name, err)
	}
	return boundListener{name: spec.Name, matcher: g, l: spec.Listener}, nil
}

// observed wraps a session and reports its operations to listeners.
type observed struct {
	inner     Session
	worker    WorkerID
	listeners []boundListener
}

// observedKiller keeps the Killer capability visible through the wrapper.
type observedKiller struct {
	*observed
}

func wrapSession(s Session, worker WorkerID, listeners []boundListener) Session {
	if len(listeners) == 0 {
		return s
	}
	o := &observed{inner: s, worker: worker, listeners: listeners}
	if _, ok := s.(Killer); ok {
		return observedKiller{o}
	}
	return o
}

func (o *observed) ID() string {
	return o.inner.ID()
}

func (o *observed) Unwrap() Session {
	return o.inner
}

func (o *observed) Probe() error {
	return o.run(OpProbe, o.inner.Probe)
}

func (o *observed) Destroy() error {
	return o.run(OpDestroy, o.inner.Destroy)
}

func (k observedKiller) ForceKill() error {
	return k.run(OpKill, k.inner.(Killer).ForceKill)
}

func (o *observed) run(op string, fn func() error) error {
	o.emit(Event{Op: op, Phase: PhaseBefore, Worker: o.worker, Session: o.inner.ID()})
	start := time.Now()
	err := fn()
	o.emit(Event{
		Op:      op,
		Phase:   PhaseAfter,
		Worker:  o.worker,
		Session: o.inner.ID(),
		Err:     err,
		Elapsed: time.Since(start),
	})
	return err
}

func (o *observed) emit(e Event) {
	for _, l := range o.listeners {
		if l.matcher.Match(e.Op) {
			l.l.OnEvent(e)
		}
	}
}
