package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/notify"
)

// Phase is the reloader's lifecycle state. The tagged state replaces
// the flag triple the UI consumes, so the cancellation-vs-error
// distinction is structural rather than dependent on flag ordering.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseReloading
	PhaseLoaded
	PhaseFailed
)

// FailureKind classifies a failed reload for messaging.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailureNotFound
	FailureGeneric
)

// Status is a point-in-time view of the reloader. Loading and
// Reloading both mean an attempt is in flight; Reloading is the flag
// consumers gate non-flickering UI on, and under supersession it stays
// true across back-to-back reloads because a superseded attempt never
// clears state it no longer owns.
type Status struct {
	Phase     Phase
	Failure   FailureKind
	Loading   bool
	HasError  bool
	Reloading bool
}

// Loader fetches cart state and commits it on demand. *Cache satisfies
// it. Fetch and Replace are split so the reloader can discard a
// superseded attempt's result instead of committing it.
type Loader interface {
	Fetch(ctx context.Context) ([]domain.CartLine, error)
	Replace(items []domain.CartLine)
}

// Reloader supervises cart reloads: it tracks the reload lifecycle,
// cancels a superseded in-flight attempt, classifies failures, and
// emits notifications. It is re-invoked on startup, on language
// change, and whenever the cart pane opens.
//
// Each attempt owns its cancellation handle; starting a new attempt
// cancels and replaces the previous one, so at most one attempt's
// outcome is ever applied.
type Reloader struct {
	loader   Loader
	notifier notify.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	phase   Phase
	failure FailureKind
	gen     uint64             // Current attempt; stale settlements compare against it
	cancel  context.CancelFunc // Cancellation handle owned by the current attempt
}

// NewReloader creates a reloader over loader, publishing failures to
// notifier.
func NewReloader(loader Loader, notifier notify.Notifier, logger *slog.Logger) *Reloader {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Reloader{
		loader:   loader,
		notifier: notifier,
		logger:   logger,
	}
}

// Status returns the current lifecycle view.
func (r *Reloader) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()
	inFlight := r.phase == PhaseReloading
	return Status{
		Phase:     r.phase,
		Failure:   r.failure,
		Loading:   inFlight,
		HasError:  r.phase == PhaseFailed,
		Reloading: inFlight,
	}
}

// Reload runs one reload attempt to completion. Any previous in-flight
// attempt is cancelled before the new network call is issued; the
// cancelled attempt's eventual settlement is recognized by generation
// and discarded, so a stale slow response can never overwrite state
// written by a newer one.
//
// Reload blocks until its own attempt settles (or is superseded); run
// it from a goroutine or a UI command.
func (r *Reloader) Reload(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		// Supersede: abort the previous attempt before dispatching ours.
		r.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.gen++
	gen := r.gen
	r.phase = PhaseReloading
	// Cleared optimistically so a retry about to succeed does not keep
	// flashing the previous failure.
	r.failure = FailureNone
	r.mu.Unlock()

	defer cancel()

	lines, err := r.loader.Fetch(ctx)
	r.settle(gen, lines, err)
}

// settle applies the outcome of attempt gen, unless a newer attempt
// has taken ownership of the state in the meantime. Cancellation can
// lose the race with a response that was already fully read; the
// generation check is what keeps such a stale result out, so the
// commit happens here and not in the loader.
func (r *Reloader) settle(gen uint64, lines []domain.CartLine, err error) {
	r.mu.Lock()

	if gen != r.gen {
		// Superseded: the newer attempt owns the lifecycle now, and
		// this attempt's lines are discarded along with its status.
		r.mu.Unlock()
		r.logger.Debug("stale reload settled", "gen", gen)
		return
	}
	r.cancel = nil

	switch {
	case err == nil:
		r.phase = PhaseLoaded
		// Committed inside the guarded section so no newer attempt can
		// start and land between the check and the commit.
		r.loader.Replace(lines)
		r.mu.Unlock()

	case errors.Is(err, context.Canceled):
		// The attempt was aborted, not failed: the user never waited on
		// this result, so no error state and no notification.
		r.phase = PhaseIdle
		r.mu.Unlock()
		r.logger.Debug("reload cancelled", "gen", gen)

	case errors.Is(err, domain.ErrCartNotFound):
		r.phase = PhaseFailed
		r.failure = FailureNotFound
		r.mu.Unlock()
		r.logger.Warn("cart not found on reload")
		r.notifier.Notify(notify.Event{Level: notify.LevelError, Kind: notify.KindCartNotFound})

	default:
		r.phase = PhaseFailed
		r.failure = FailureGeneric
		r.mu.Unlock()
		r.logger.Error("reload failed", "error", err)
		r.notifier.Notify(notify.Event{Level: notify.LevelError, Kind: notify.KindLoadFailed})
	}
}
