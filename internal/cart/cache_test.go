package cart

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/tiketto/tiketto/internal/config"
	"github.com/tiketto/tiketto/internal/domain"
)

type fakeCartClient struct {
	mu       sync.Mutex
	lines    []domain.CartLine
	getErr   error
	setErr   error
	clearErr error
	calls    []string
}

func (f *fakeCartClient) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeCartClient) GetCart(ctx context.Context) ([]domain.CartLine, error) {
	f.record("get")
	if f.getErr != nil {
		return nil, f.getErr
	}
	lines := make([]domain.CartLine, len(f.lines))
	copy(lines, f.lines)
	return lines, nil
}

func (f *fakeCartClient) SetItemQuantity(ctx context.Context, productID string, quantity int) error {
	f.record("set:" + productID)
	return f.setErr
}

func (f *fakeCartClient) ClearCart(ctx context.Context) error {
	f.record("clear")
	return f.clearErr
}

func (f *fakeCartClient) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	calls := make([]string, len(f.calls))
	copy(calls, f.calls)
	return calls
}

type fakeSession struct {
	authed bool
}

func (f *fakeSession) Authenticated() bool { return f.authed }

func line(id, name string, qty, available int) domain.CartLine {
	return domain.CartLine{
		ID: id, Name: name, Quantity: qty,
		AvailableQuantity: available, InStock: available > 0,
	}
}

func TestLoadReplacesWholesale(t *testing.T) {
	client := &fakeCartClient{lines: []domain.CartLine{line("7", "A", 2, 5)}}
	cache := NewCache(client, &fakeSession{}, config.NullLogger())

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := cache.Items(); len(got) != 1 || got[0].ID != "7" {
		t.Fatalf("unexpected items after first load: %+v", got)
	}

	// The second response no longer contains product 7; the stale line
	// must disappear, not merge.
	client.lines = []domain.CartLine{line("9", "B", 1, 3)}
	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}

	got := cache.Items()
	if len(got) != 1 || got[0].ID != "9" {
		t.Fatalf("expected full replace, got %+v", got)
	}
}

func TestLoadFailureLeavesItemsUntouched(t *testing.T) {
	client := &fakeCartClient{lines: []domain.CartLine{line("7", "A", 2, 5)}}
	cache := NewCache(client, &fakeSession{}, config.NullLogger())

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	client.getErr = domain.ErrServerUnreachable
	if err := cache.Load(context.Background()); !errors.Is(err, domain.ErrServerUnreachable) {
		t.Fatalf("expected load error to propagate, got %v", err)
	}

	if got := cache.Items(); len(got) != 1 || got[0].ID != "7" {
		t.Fatalf("items mutated by failed load: %+v", got)
	}
}

func TestFetchDoesNotCommit(t *testing.T) {
	client := &fakeCartClient{lines: []domain.CartLine{line("7", "A", 2, 5)}}
	cache := NewCache(client, &fakeSession{}, config.NullLogger())

	lines, err := cache.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(lines) != 1 || lines[0].ID != "7" {
		t.Fatalf("unexpected fetched lines: %+v", lines)
	}
	if got := cache.Items(); len(got) != 0 {
		t.Fatalf("fetch committed items: %+v", got)
	}

	cache.Replace(lines)
	if got := cache.Items(); len(got) != 1 || got[0].ID != "7" {
		t.Fatalf("replace did not commit: %+v", got)
	}
}

func TestSetQuantityWritesThenReloads(t *testing.T) {
	client := &fakeCartClient{lines: []domain.CartLine{line("7", "A", 3, 5)}}
	cache := NewCache(client, &fakeSession{}, config.NullLogger())

	if err := cache.SetQuantity(context.Background(), "7", 3); err != nil {
		t.Fatalf("set quantity: %v", err)
	}

	calls := client.callLog()
	if len(calls) != 2 || calls[0] != "set:7" || calls[1] != "get" {
		t.Fatalf("expected write-then-reload, got %v", calls)
	}
	if got := cache.Items(); len(got) != 1 || got[0].Quantity != 3 {
		t.Fatalf("expected reconciled items, got %+v", got)
	}
}

func TestSetQuantityWriteFailureSkipsReload(t *testing.T) {
	client := &fakeCartClient{setErr: &domain.StockError{Available: 5}}
	cache := NewCache(client, &fakeSession{}, config.NullLogger())

	err := cache.SetQuantity(context.Background(), "7", 6)
	var stockErr *domain.StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected StockError, got %v", err)
	}

	calls := client.callLog()
	if len(calls) != 1 || calls[0] != "set:7" {
		t.Fatalf("expected no reload after failed write, got %v", calls)
	}
}

func TestClearWithoutSessionIsNoOp(t *testing.T) {
	client := &fakeCartClient{lines: []domain.CartLine{line("7", "A", 2, 5)}}
	cache := NewCache(client, &fakeSession{authed: false}, config.NullLogger())

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	before := len(client.callLog())

	if err := cache.Clear(context.Background()); err != nil {
		t.Fatalf("expected guest clear to be a silent no-op, got %v", err)
	}

	if calls := client.callLog(); len(calls) != before {
		t.Fatalf("guest clear contacted the server: %v", calls)
	}
	if got := cache.Items(); len(got) != 1 {
		t.Fatalf("guest clear mutated items: %+v", got)
	}
}

func TestClearAuthenticatedEmptiesLocally(t *testing.T) {
	client := &fakeCartClient{lines: []domain.CartLine{line("7", "A", 2, 5)}}
	cache := NewCache(client, &fakeSession{authed: true}, config.NullLogger())

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cache.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}

	if got := cache.Items(); len(got) != 0 {
		t.Fatalf("expected empty cart, got %+v", got)
	}

	// Clear trusts the DELETE; an empty cart needs no refetch.
	calls := client.callLog()
	if calls[len(calls)-1] != "clear" {
		t.Fatalf("expected clear to be the final call, got %v", calls)
	}
}

func TestClearFailurePreservesItems(t *testing.T) {
	client := &fakeCartClient{
		lines:    []domain.CartLine{line("7", "A", 2, 5)},
		clearErr: domain.ErrServerUnreachable,
	}
	cache := NewCache(client, &fakeSession{authed: true}, config.NullLogger())

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cache.Clear(context.Background()); !errors.Is(err, domain.ErrServerUnreachable) {
		t.Fatalf("expected clear error, got %v", err)
	}
	if got := cache.Items(); len(got) != 1 {
		t.Fatalf("failed clear mutated items: %+v", got)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	client := &fakeCartClient{lines: []domain.CartLine{line("7", "A", 2, 5)}}
	cache := NewCache(client, &fakeSession{}, config.NullLogger())

	var got []domain.CartSnapshot
	cancel := cache.Subscribe(func(s domain.CartSnapshot) {
		got = append(got, s)
	})

	if err := cache.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	cache.SetLocked(true)

	if len(got) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(got))
	}
	if len(got[0].Items) != 1 || got[0].Locked {
		t.Fatalf("unexpected first snapshot: %+v", got[0])
	}
	if !got[1].Locked {
		t.Fatal("expected second snapshot locked")
	}

	cancel()
	cache.SetLocked(false)
	if len(got) != 2 {
		t.Fatal("subscription delivered after cancel")
	}
}

func TestLockedReflectsCheckoutFlag(t *testing.T) {
	cache := NewCache(&fakeCartClient{}, &fakeSession{}, config.NullLogger())

	if cache.Locked() {
		t.Fatal("expected unlocked cache")
	}
	cache.SetLocked(true)
	if !cache.Locked() {
		t.Fatal("expected locked cache")
	}
}
