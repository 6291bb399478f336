package broadcast

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubViewSource struct {
	mu      sync.Mutex
	fetches int
	err     error
}

func (s *stubViewSource) FetchView(ctx context.Context, slug string) (*UpdateData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return &UpdateData{
		Outcomes: []OutcomeView{{TokenID: "a", Name: "Yes", Price: 0.6, Probability: 0.6}},
	}, nil
}

func (s *stubViewSource) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

type recordingSink struct {
	mu      sync.Mutex
	updates []Update
	sendErr error
	closed  atomic.Bool
}

func (s *recordingSink) Send(ctx context.Context, update Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.updates = append(s.updates, update)
	return nil
}

func (s *recordingSink) Close() error {
	s.closed.Store(true)
	return nil
}

func (s *recordingSink) updateCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.updates)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestAttach_FirstSubscriberStartsLoop(t *testing.T) {
	source := &stubViewSource{}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)
	defer registry.Shutdown()

	sink := &recordingSink{}
	registry.Attach(1, "test-market", sink)

	if registry.ActiveLoops() != 1 {
		t.Fatalf("loops=%d want 1", registry.ActiveLoops())
	}
	waitFor(t, func() bool { return sink.updateCount() >= 2 })

	first := func() Update {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return sink.updates[0]
	}()
	if first.Type != "market_update" || first.InstrumentID != 1 {
		t.Fatalf("update=%+v", first)
	}
}

func TestAttach_SecondSubscriberSharesLoop(t *testing.T) {
	source := &stubViewSource{}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)
	defer registry.Shutdown()

	a, b := &recordingSink{}, &recordingSink{}
	registry.Attach(1, "test-market", a)
	registry.Attach(1, "test-market", b)

	if registry.ActiveLoops() != 1 {
		t.Fatalf("loops=%d want 1, second subscriber must share", registry.ActiveLoops())
	}
	if registry.Subscribers(1) != 2 {
		t.Fatalf("subscribers=%d want 2", registry.Subscribers(1))
	}
	waitFor(t, func() bool { return a.updateCount() >= 1 && b.updateCount() >= 1 })
}

func TestDetach_LastSubscriberStopsLoop(t *testing.T) {
	source := &stubViewSource{}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)
	defer registry.Shutdown()

	a, b := &recordingSink{}, &recordingSink{}
	registry.Attach(1, "test-market", a)
	registry.Attach(1, "test-market", b)

	registry.Detach(1, a)
	if registry.ActiveLoops() != 1 {
		t.Fatalf("loops=%d want 1 while a subscriber remains", registry.ActiveLoops())
	}
	if !a.closed.Load() {
		t.Fatalf("detached sink must be closed")
	}

	registry.Detach(1, b)
	if registry.ActiveLoops() != 0 {
		t.Fatalf("loops=%d want 0 after last detach", registry.ActiveLoops())
	}
}

func TestDetach_UnknownSinkNoop(t *testing.T) {
	source := &stubViewSource{}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)
	defer registry.Shutdown()

	a := &recordingSink{}
	registry.Attach(1, "test-market", a)
	registry.Detach(1, &recordingSink{})
	registry.Detach(2, a)

	if registry.ActiveLoops() != 1 || registry.Subscribers(1) != 1 {
		t.Fatalf("loops=%d subscribers=%d, unknown detach must not disturb", registry.ActiveLoops(), registry.Subscribers(1))
	}
}

func TestFailedPushDetachesSink(t *testing.T) {
	source := &stubViewSource{}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)
	defer registry.Shutdown()

	broken := &recordingSink{sendErr: errors.New("write: broken pipe")}
	healthy := &recordingSink{}
	registry.Attach(1, "test-market", broken)
	registry.Attach(1, "test-market", healthy)

	waitFor(t, func() bool { return registry.Subscribers(1) == 1 })
	if !broken.closed.Load() {
		t.Fatalf("broken sink must be closed after failed push")
	}
	waitFor(t, func() bool { return healthy.updateCount() >= 1 })
}

func TestFailedPushLastSinkStopsLoop(t *testing.T) {
	source := &stubViewSource{}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)
	defer registry.Shutdown()

	broken := &recordingSink{sendErr: errors.New("write: broken pipe")}
	registry.Attach(1, "test-market", broken)

	waitFor(t, func() bool { return registry.ActiveLoops() == 0 })
}

func TestFetchFailureKeepsLoopAlive(t *testing.T) {
	source := &stubViewSource{err: errors.New("status 502")}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)
	defer registry.Shutdown()

	sink := &recordingSink{}
	registry.Attach(1, "test-market", sink)

	waitFor(t, func() bool { return source.fetchCount() >= 3 })
	if registry.ActiveLoops() != 1 {
		t.Fatalf("loops=%d want 1, fetch failures must not kill the loop", registry.ActiveLoops())
	}
	if sink.updateCount() != 0 {
		t.Fatalf("updates=%d want 0 while fetches fail", sink.updateCount())
	}
}

func TestShutdown_ClosesEverything(t *testing.T) {
	source := &stubViewSource{}
	registry := NewRegistry(context.Background(), source, 10*time.Millisecond, nil)

	a, b := &recordingSink{}, &recordingSink{}
	registry.Attach(1, "m1", a)
	registry.Attach(2, "m2", b)

	registry.Shutdown()
	if registry.ActiveLoops() != 0 {
		t.Fatalf("loops=%d want 0", registry.ActiveLoops())
	}
	if !a.closed.Load() || !b.closed.Load() {
		t.Fatalf("all sinks must be closed on shutdown")
	}

	// Post-shutdown attachments are refused and the sink closed.
	late := &recordingSink{}
	registry.Attach(3, "m3", late)
	if registry.ActiveLoops() != 0 {
		t.Fatalf("loops=%d want 0 after shutdown", registry.ActiveLoops())
	}
	if !late.closed.Load() {
		t.Fatalf("late sink must be closed")
	}
}
