package syncadapter

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chanSource struct {
	events chan Event
	err    chan error
	closed atomic.Bool
}

func newChanSource() *chanSource {
	return &chanSource{events: make(chan Event, 16), err: make(chan error, 1)}
}

func (s *chanSource) Next(ctx context.Context) (Event, error) {
	select {
	case <-ctx.Done():
		return Event{}, ctx.Err()
	case err := <-s.err:
		return Event{}, err
	case ev := <-s.events:
		return ev, nil
	}
}

func (s *chanSource) Close() error {
	s.closed.Store(true)
	return nil
}

func runAdapter(t *testing.T, a *Adapter) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestReadyTriggersInitialFetch(t *testing.T) {
	src := newChanSource()
	var fetches atomic.Int32
	_, _ = runAdapter(t, New(src, func(context.Context) error {
		fetches.Add(1)
		return nil
	}, Options{}))

	src.events <- Event{Type: EventReady, ActorID: "dev-1"}
	assert.Eventually(t, func() bool { return fetches.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestBurstCoalescesWhileFetching(t *testing.T) {
	src := newChanSource()
	release := make(chan struct{})
	started := make(chan struct{}, 8)
	var fetches atomic.Int32
	_, _ = runAdapter(t, New(src, func(context.Context) error {
		fetches.Add(1)
		started <- struct{}{}
		<-release
		return nil
	}, Options{}))

	src.events <- Event{Type: EventStateChanged, ActorID: "dev-1"}
	<-started
	for i := 0; i < 5; i++ {
		src.events <- Event{Type: EventStateChanged, ActorID: "dev-1"}
	}
	assert.Eventually(t, func() bool { return len(src.events) == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)

	assert.Eventually(t, func() bool { return fetches.Load() == 2 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(2), fetches.Load())
}

func TestUnknownEventsIgnored(t *testing.T) {
	src := newChanSource()
	var fetches atomic.Int32
	_, _ = runAdapter(t, New(src, func(context.Context) error {
		fetches.Add(1)
		return nil
	}, Options{}))

	src.events <- Event{Type: "chat", ActorID: "dev-1"}
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fetches.Load())
}

func TestRefetchFailureHealsOnNextSignal(t *testing.T) {
	src := newChanSource()
	var fetches atomic.Int32
	_, done := runAdapter(t, New(src, func(context.Context) error {
		if fetches.Add(1) == 1 {
			return errors.New("server unavailable")
		}
		return nil
	}, Options{}))

	src.events <- Event{Type: EventStateChanged}
	assert.Eventually(t, func() bool { return fetches.Load() == 1 }, time.Second, 5*time.Millisecond)
	src.events <- Event{Type: EventStateChanged}
	assert.Eventually(t, func() bool { return fetches.Load() == 2 }, time.Second, 5*time.Millisecond)

	select {
	case err := <-done:
		t.Fatalf("adapter stopped: %v", err)
	default:
	}
}

func TestSourceFailureStopsAdapter(t *testing.T) {
	src := newChanSource()
	_, done := runAdapter(t, New(src, func(context.Context) error { return nil }, Options{}))

	boom := errors.New("connection reset")
	src.err <- boom
	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("adapter did not stop")
	}
	assert.True(t, src.closed.Load())
}

func TestCancelStopsAdapter(t *testing.T) {
	src := newChanSource()
	cancel, done := runAdapter(t, New(src, func(context.Context) error { return nil }, Options{Settle: time.Hour}))

	src.events <- Event{Type: EventStateChanged}
	cancel()
	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("adapter did not stop")
	}
	assert.True(t, src.closed.Load())
}

func TestWebSocketURL(t *testing.T) {
	got, err := wsURL("http://localhost:8080/")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/ws", got)

	got, err = wsURL("https://api.example.com/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://api.example.com/ws", got)

	_, err = wsURL("ftp://example.com")
	assert.Error(t, err)
}
