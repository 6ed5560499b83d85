package container

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/entrhq/sessionkeeper/pkg/logging"
)

// fakeSession records every call made on it.
type fakeSession struct {
	id string

	mu           sync.Mutex
	probeErr     error
	destroyErr   error
	destroyDelay time.Duration
	killErr      error

	probes    atomic.Int32
	destroyed atomic.Int32
	killed    atomic.Int32
}

func newFakeSession(id string) *fakeSession {
	return &fakeSession{id: id}
}

func (s *fakeSession) ID() string { return s.id }

func (s *fakeSession) Probe() error {
	s.probes.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.probeErr
}

func (s *fakeSession) Destroy() error {
	s.destroyed.Add(1)
	s.mu.Lock()
	delay, err := s.destroyDelay, s.destroyErr
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	return err
}

func (s *fakeSession) ForceKill() error {
	s.killed.Add(1)
	return s.killErr
}

func (s *fakeSession) failProbe(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.probeErr = err
}

// plainSession hides ForceKill.
type plainSession struct {
	s *fakeSession
}

func (p plainSession) ID() string     { return p.s.ID() }
func (p plainSession) Probe() error   { return p.s.Probe() }
func (p plainSession) Destroy() error { return p.s.Destroy() }

// fakeFactory hands out fakeSessions and remembers them.
type fakeFactory struct {
	mu        sync.Mutex
	created   []*fakeSession
	proxies   []*Proxy
	err       error
	configure func(*fakeSession)
}

func (f *fakeFactory) Create(ctx context.Context, proxy *Proxy) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	s := newFakeSession(fmt.Sprintf("fake-%d", len(f.created)+1))
	if f.configure != nil {
		f.configure(s)
	}
	f.created = append(f.created, s)
	f.proxies = append(f.proxies, proxy)
	return s, nil
}

func (f *fakeFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.created)
}

func (f *fakeFactory) session(i int) *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.created[i]
}

// syncBuffer is a bytes.Buffer safe for the concurrent writes of goroutines
// logging while the test reads.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Count(substr string) int {
	return strings.Count(b.String(), substr)
}

func testSettings() Settings {
	return Settings{
		RecreateOnFailure:  true,
		CloseTimeout:       time.Second,
		ReapInterval:       20 * time.Millisecond,
		SlowCloseThreshold: 200 * time.Millisecond,
	}
}

func newTestContainer(t *testing.T, factory Factory, settings Settings) (*Container, *syncBuffer) {
	t.Helper()
	logs := &syncBuffer{}
	c := New(factory,
		WithLogger(logging.NewWriterLogger("container", logs)),
		WithSettings(StaticSettings(settings)),
	)
	t.Cleanup(c.Close)
	return c, logs
}

func discardLogger() Logger {
	return bufferLogger(&syncBuffer{})
}

func bufferLogger(buf *syncBuffer) Logger {
	return logging.NewWriterLogger("container", buf)
}
