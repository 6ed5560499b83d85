package container

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	s := newFakeSession("s1")

	_, ok := r.Get(1)
	assert.False(t, ok)

	assert.Same(t, s, r.Put(1, s))
	got, ok := r.Get(1)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.True(t, r.Has(1))
	assert.Equal(t, 1, r.Len())

	removed, ok := r.Remove(1)
	assert.True(t, ok)
	assert.Same(t, s, removed)

	_, ok = r.Remove(1)
	assert.False(t, ok, "second remove is a no-op")
	assert.Zero(t, r.Len())
}

func TestRegistry_ConcurrentRemoveHasOneWinner(t *testing.T) {
	r := NewRegistry()
	r.Put(7, newFakeSession("s7"))

	var winners atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := r.Remove(7); ok {
				winners.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, winners.Load())
}

func TestLiveness(t *testing.T) {
	l := NewLiveness()
	a, b := NewWorker(), NewWorker()

	l.Add(a)
	l.Add(a)
	l.Add(b)
	assert.Equal(t, 2, l.Len())
	assert.True(t, l.Contains(a.ID()))
	assert.Len(t, l.Snapshot(), 2)

	assert.True(t, l.Remove(a.ID()))
	assert.False(t, l.Remove(a.ID()))
	assert.False(t, l.Contains(a.ID()))
	assert.Equal(t, []Worker{b}, l.Snapshot())
}

func TestHandle(t *testing.T) {
	a, b := NewWorker(), NewWorker()
	assert.NotEqual(t, a.ID(), b.ID())

	assert.True(t, a.Alive())
	a.Exit()
	a.Exit()
	assert.False(t, a.Alive())
	assert.True(t, b.Alive())

	select {
	case <-a.Done():
	default:
		t.Fatal("Done should be closed after Exit")
	}
}

func TestExitGuards_Fire(t *testing.T) {
	g := NewExitGuards()
	var fired atomic.Int32

	g.Register(1, func() { fired.Add(1) })
	g.Register(2, func() { fired.Add(1) })
	g.Register(2, func() { fired.Add(10) }) // replaces
	g.Register(3, func() { fired.Add(100) })
	g.Unregister(3)
	assert.Equal(t, 2, g.Len())

	require.NoError(t, g.Fire(context.Background()))
	assert.EqualValues(t, 11, fired.Load())
	assert.Zero(t, g.Len())

	require.NoError(t, g.Fire(context.Background()))
	assert.EqualValues(t, 11, fired.Load(), "guards are one-shot")
}

func TestExitGuards_FireHonoursContext(t *testing.T) {
	g := NewExitGuards()
	release := make(chan struct{})
	defer close(release)
	g.Register(1, func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, g.Fire(ctx), context.DeadlineExceeded)
}

func TestNotifyShutdown_OnContextCancel(t *testing.T) {
	factory := &fakeFactory{}
	c, _ := newTestContainer(t, factory, testSettings())
	w := NewWorker()
	_, err := c.GetSession(context.Background(), w)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	stop := NotifyShutdown(ctx, c)
	defer stop()

	cancel()

	require.Eventually(t, func() bool { return !c.HasSession(w) }, time.Second, 5*time.Millisecond)
	assert.EqualValues(t, 1, factory.session(0).destroyed.Load())
}

func TestNotifyShutdown_StopWithoutShutdown(t *testing.T) {
	factory := &fakeFactory{}
	c, _ := newTestContainer(t, factory, testSettings())
	w := NewWorker()
	_, err := c.GetSession(context.Background(), w)
	require.NoError(t, err)

	stop := NotifyShutdown(context.Background(), c)
	stop()
	stop()

	time.Sleep(20 * time.Millisecond)
	assert.True(t, c.HasSession(w))
}
