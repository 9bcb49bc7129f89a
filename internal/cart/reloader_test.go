package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/tiketto/tiketto/internal/config"
	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/notify"
)

// fakeLoader blocks each Fetch until the test releases it, so attempts
// can be interleaved deterministically.
type fakeLoader struct {
	started chan struct{}
	release chan error
	lines   []domain.CartLine

	mu      sync.Mutex
	applied [][]domain.CartLine
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		started: make(chan struct{}, 8),
		release: make(chan error),
	}
}

func (f *fakeLoader) Fetch(ctx context.Context) ([]domain.CartLine, error) {
	f.started <- struct{}{}
	select {
	case err := <-f.release:
		if err != nil {
			return nil, err
		}
		return f.lines, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (f *fakeLoader) Replace(items []domain.CartLine) {
	f.mu.Lock()
	f.applied = append(f.applied, items)
	f.mu.Unlock()
}

func (f *fakeLoader) appliedLog() [][]domain.CartLine {
	f.mu.Lock()
	defer f.mu.Unlock()
	applied := make([][]domain.CartLine, len(f.applied))
	copy(applied, f.applied)
	return applied
}

type recordNotifier struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recordNotifier) Notify(e notify.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordNotifier) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]notify.Event, len(r.events))
	copy(events, r.events)
	return events
}

func waitStarted(t *testing.T, loader *fakeLoader) {
	t.Helper()
	select {
	case <-loader.started:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for load to start")
	}
}

func TestReloadSuccess(t *testing.T) {
	loader := newFakeLoader()
	notifier := &recordNotifier{}
	r := NewReloader(loader, notifier, config.NullLogger())

	if got := r.Status(); got.Phase != PhaseIdle {
		t.Fatalf("expected idle before first reload, got %v", got.Phase)
	}

	done := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done)
	}()

	waitStarted(t, loader)
	if got := r.Status(); !got.Reloading || !got.Loading {
		t.Fatalf("expected in-flight status, got %+v", got)
	}

	loader.release <- nil
	<-done

	got := r.Status()
	if got.Phase != PhaseLoaded || got.HasError || got.Reloading {
		t.Fatalf("expected loaded status, got %+v", got)
	}
	if events := notifier.all(); len(events) != 0 {
		t.Fatalf("success must not notify, got %v", events)
	}
}

func TestReloadNotFound(t *testing.T) {
	loader := newFakeLoader()
	notifier := &recordNotifier{}
	r := NewReloader(loader, notifier, config.NullLogger())

	done := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done)
	}()

	waitStarted(t, loader)
	loader.release <- domain.ErrCartNotFound
	<-done

	got := r.Status()
	if got.Phase != PhaseFailed || got.Failure != FailureNotFound {
		t.Fatalf("expected not-found failure, got %+v", got)
	}

	events := notifier.all()
	if len(events) != 1 || events[0].Kind != notify.KindCartNotFound {
		t.Fatalf("expected one cart-not-found event, got %v", events)
	}
}

func TestReloadGenericFailure(t *testing.T) {
	loader := newFakeLoader()
	notifier := &recordNotifier{}
	r := NewReloader(loader, notifier, config.NullLogger())

	done := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done)
	}()

	waitStarted(t, loader)
	loader.release <- domain.ErrServerUnreachable
	<-done

	got := r.Status()
	if got.Phase != PhaseFailed || got.Failure != FailureGeneric || !got.HasError {
		t.Fatalf("expected generic failure, got %+v", got)
	}

	events := notifier.all()
	if len(events) != 1 || events[0].Kind != notify.KindLoadFailed {
		t.Fatalf("expected one load-failed event, got %v", events)
	}
}

func TestReloadCancellationIsSilent(t *testing.T) {
	loader := newFakeLoader()
	notifier := &recordNotifier{}
	r := NewReloader(loader, notifier, config.NullLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Reload(ctx)
		close(done)
	}()

	waitStarted(t, loader)
	cancel()
	<-done

	got := r.Status()
	if got.Phase != PhaseIdle || got.HasError || got.Failure != FailureNone {
		t.Fatalf("cancellation leaked into user-visible state: %+v", got)
	}
	if events := notifier.all(); len(events) != 0 {
		t.Fatalf("cancellation must not notify, got %v", events)
	}
}

func TestReloadSupersession(t *testing.T) {
	loader := newFakeLoader()
	notifier := &recordNotifier{}
	r := NewReloader(loader, notifier, config.NullLogger())

	done1 := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done1)
	}()
	waitStarted(t, loader)

	// The second reload cancels the first mid-flight. The first settles
	// as cancelled but is stale by then; only the second's outcome may
	// touch state.
	done2 := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done2)
	}()
	waitStarted(t, loader)
	<-done1

	if got := r.Status(); got.Phase != PhaseReloading {
		t.Fatalf("superseded attempt cleared in-flight state: %+v", got)
	}

	loader.release <- nil
	<-done2

	got := r.Status()
	if got.Phase != PhaseLoaded || got.HasError {
		t.Fatalf("expected loaded status after winning attempt, got %+v", got)
	}
	if events := notifier.all(); len(events) != 0 {
		t.Fatalf("supersession produced notifications: %v", events)
	}
}

// slowLoader gives every Fetch its own release channel and never
// honors cancellation, modelling a response that was already fully
// read when the cancel landed.
type slowLoader struct {
	started chan chan []domain.CartLine

	mu      sync.Mutex
	applied [][]domain.CartLine
}

func (l *slowLoader) Fetch(ctx context.Context) ([]domain.CartLine, error) {
	release := make(chan []domain.CartLine)
	l.started <- release
	return <-release, nil
}

func (l *slowLoader) Replace(items []domain.CartLine) {
	l.mu.Lock()
	l.applied = append(l.applied, items)
	l.mu.Unlock()
}

func (l *slowLoader) appliedLog() [][]domain.CartLine {
	l.mu.Lock()
	defer l.mu.Unlock()
	applied := make([][]domain.CartLine, len(l.applied))
	copy(applied, l.applied)
	return applied
}

func TestSupersededReloadCannotOverwriteItems(t *testing.T) {
	loader := &slowLoader{started: make(chan chan []domain.CartLine, 2)}
	r := NewReloader(loader, &recordNotifier{}, config.NullLogger())

	done1 := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done1)
	}()
	release1 := <-loader.started

	done2 := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done2)
	}()
	release2 := <-loader.started

	// The winning attempt lands first.
	release2 <- []domain.CartLine{line("9", "new", 1, 3)}
	<-done2

	// The superseded attempt completes afterwards with a successful
	// response; its lines must be discarded, not committed.
	release1 <- []domain.CartLine{line("7", "stale", 5, 5)}
	<-done1

	applied := loader.appliedLog()
	if len(applied) != 1 {
		t.Fatalf("expected exactly one commit, got %d", len(applied))
	}
	if len(applied[0]) != 1 || applied[0][0].ID != "9" {
		t.Fatalf("stale reload overwrote items: %+v", applied[0])
	}
	if got := r.Status(); got.Phase != PhaseLoaded || got.HasError {
		t.Fatalf("unexpected status after late stale settle: %+v", got)
	}
}

func TestRetryClearsPreviousFailure(t *testing.T) {
	loader := newFakeLoader()
	notifier := &recordNotifier{}
	r := NewReloader(loader, notifier, config.NullLogger())

	done := make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done)
	}()
	waitStarted(t, loader)
	loader.release <- domain.ErrServerUnreachable
	<-done

	done = make(chan struct{})
	go func() {
		r.Reload(context.Background())
		close(done)
	}()
	waitStarted(t, loader)

	// Mid-retry the old failure must already be gone.
	if got := r.Status(); got.HasError || got.Failure != FailureNone {
		t.Fatalf("retry did not clear failure state: %+v", got)
	}

	loader.release <- nil
	<-done

	if got := r.Status(); got.Phase != PhaseLoaded {
		t.Fatalf("expected loaded after retry, got %+v", got)
	}
}
