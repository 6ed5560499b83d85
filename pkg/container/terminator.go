package container

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/entrhq/sessionkeeper/pkg/config"
	"github.com/entrhq/sessionkeeper/pkg/logging"
)

// Timing classifies how long a termination took.
type Timing int

const (
	TimingNormal Timing = iota
	TimingSlow
	TimingExceeded
)

// String returns a readable name for the timing class.
func (t Timing) String() string {
	switch t {
	case TimingSlow:
		return "slow"
	case TimingExceeded:
		return "exceeded"
	default:
		return "normal"
	}
}

// Termination reports what happened while destroying a session.
type Termination struct {
	Session  string
	Elapsed  time.Duration
	Timing   Timing
	TimedOut bool
	// Err is the unclassified Destroy failure, if any. It is informational:
	// callers never fail because of it.
	Err error
}

// Terminator destroys sessions within a wall-clock budget. Destroy runs on
// its own goroutine; when it does not return in time the caller moves on and
// the session is force-killed.
//
// The zero value is usable: it applies the default budget and slow threshold
// and logs to stderr.
type Terminator struct {
	Timeout       time.Duration
	SlowThreshold time.Duration
	Logger        Logger
}

var stderrLogger = sync.OnceValue(func() Logger {
	return logging.NewWriterLogger("terminator", os.Stderr)
})

func (t *Terminator) logger() Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return stderrLogger()
}

func (t *Terminator) timeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return config.DefaultCloseTimeout
}

func (t *Terminator) slowThreshold() time.Duration {
	if t.SlowThreshold > 0 {
		return t.SlowThreshold
	}
	return config.DefaultSlowCloseThreshold
}

// Terminate destroys s and returns once Destroy finished or Timeout elapsed,
// whichever comes first. It never fails; a destroy that keeps running past
// the budget is abandoned.
func (t *Terminator) Terminate(s Session) Termination {
	id := s.ID()
	log := t.logger()
	budget := t.timeout()
	log.Infof("Closing session %s", id)

	start := time.Now()
	var killOnce sync.Once
	kill := func() {
		killOnce.Do(func() { t.forceKill(s) })
	}

	done := make(chan error, 1)
	go func() {
		err := t.destroy(s)
		kill()
		done <- err
	}()

	result := Termination{Session: id}
	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case result.Err = <-done:
	case <-timer.C:
		result.TimedOut = true
		go kill()
	}

	result.Elapsed = time.Since(start)
	switch {
	case result.TimedOut || result.Elapsed >= budget:
		result.Timing = TimingExceeded
		log.Errorf("Failed to close session %s in %s", id, budget)
	case result.Elapsed > t.slowThreshold():
		result.Timing = TimingSlow
		log.Infof("Closed session %s in %s", id, result.Elapsed)
	default:
		result.Timing = TimingNormal
		log.Debugf("Closed session %s in %s", id, result.Elapsed)
	}
	return result
}

func (t *Terminator) destroy(s Session) error {
	err := recovered(s.Destroy)
	if err == nil {
		return nil
	}
	if KindOf(err) == KindUnreachable {
		// Already gone.
		t.logger().Debugf("Session %s is unreachable: %v", s.ID(), err)
		return nil
	}
	t.logger().Errorf("Cannot close session %s normally: %v", s.ID(), err)
	return err
}

func (t *Terminator) forceKill(s Session) {
	k, ok := s.(Killer)
	if !ok {
		return
	}
	if err := recovered(k.ForceKill); err != nil {
		t.logger().Errorf("Failed to kill session %s: %v", s.ID(), err)
	}
}

// recovered turns a panic in fn into an error so a misbehaving session cannot
// take the process down from a terminator goroutine.
func recovered(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
