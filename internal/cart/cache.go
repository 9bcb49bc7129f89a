// Package cart implements the client-side cart synchronization layer:
// the cache holding the canonical local cart state, the reloader that
// supervises refreshes, and the adjuster that validates quantity edits.
package cart

import (
	"context"
	"log/slog"
	"sync"

	"github.com/tiketto/tiketto/internal/domain"
)

// SessionInfo reports whether the current session holds a bearer
// token. *identity.Resolver satisfies it.
type SessionInfo interface {
	Authenticated() bool
}

// Cache holds the canonical in-memory cart state. Items are only ever
// populated through Replace and swapped wholesale, never merged: a
// reload is the unit of consistency. The lock flag is set by checkout and only
// read here.
//
// The cache serves reactive consumers through Subscribe and imperative
// call sites through Items/Item/Locked; both views come off the same
// state under one mutex.
type Cache struct {
	client  domain.CartClient
	session SessionInfo
	logger  *slog.Logger

	mu     sync.RWMutex
	items  []domain.CartLine
	locked bool

	subMu   sync.Mutex
	subs    map[int]func(domain.CartSnapshot)
	nextSub int
}

// NewCache creates a cart cache over client. session decides whether
// Clear may contact the server.
func NewCache(client domain.CartClient, session SessionInfo, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		client:  client,
		session: session,
		logger:  logger,
		subs:    make(map[int]func(domain.CartSnapshot)),
	}
}

// Items returns a copy of the current cart lines in server order.
func (c *Cache) Items() []domain.CartLine {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]domain.CartLine, len(c.items))
	copy(items, c.items)
	return items
}

// Item returns the line for a product id, if present.
func (c *Cache) Item(productID string) (domain.CartLine, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, line := range c.items {
		if line.ID == productID {
			return line, true
		}
	}
	return domain.CartLine{}, false
}

// Locked reports whether a checkout transaction is in flight.
func (c *Cache) Locked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locked
}

// SetLocked is called by the checkout flow around its transaction.
// While locked, every mutation is rejected locally without touching
// the server.
func (c *Cache) SetLocked(locked bool) {
	c.mu.Lock()
	c.locked = locked
	c.mu.Unlock()
	c.publish()
}

// Snapshot returns the current items and lock flag as one view.
func (c *Cache) Snapshot() domain.CartSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items := make([]domain.CartLine, len(c.items))
	copy(items, c.items)
	return domain.CartSnapshot{Items: items, Locked: c.locked}
}

// Subscribe registers fn to receive a snapshot after every state
// change. The returned func cancels the subscription.
func (c *Cache) Subscribe(fn func(domain.CartSnapshot)) (cancel func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Cache) publish() {
	snapshot := c.Snapshot()
	c.subMu.Lock()
	fns := make([]func(domain.CartSnapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}

// Fetch retrieves the current cart without committing it. Callers that
// may be superseded mid-flight (the reloader) fetch first and decide
// separately whether their result still owns the state.
func (c *Cache) Fetch(ctx context.Context) ([]domain.CartLine, error) {
	lines, err := c.client.GetCart(ctx)
	if err != nil {
		c.logger.Error("failed to load cart", "error", err)
		return nil, err
	}
	return lines, nil
}

// Replace commits lines wholesale, never merging.
func (c *Cache) Replace(lines []domain.CartLine) {
	c.mu.Lock()
	c.items = lines
	c.mu.Unlock()

	c.logger.Debug("cart loaded", "lines", len(lines))
	c.publish()
}

// Load fetches the cart and replaces items wholesale. On failure the
// local items are left untouched and the error is returned for the
// caller to classify; the cache keeps no error state of its own.
func (c *Cache) Load(ctx context.Context) error {
	lines, err := c.Fetch(ctx)
	if err != nil {
		return err
	}
	c.Replace(lines)
	return nil
}

// SetQuantity sets the absolute quantity for one product line, then
// unconditionally reloads the cart. The write is never applied
// locally: the server is the single source of truth and the follow-up
// read is the reconciliation. Callers observe updated items only
// after the second round trip; failure of either trip propagates and
// commits no partial state.
func (c *Cache) SetQuantity(ctx context.Context, productID string, quantity int) error {
	if err := c.client.SetItemQuantity(ctx, productID, quantity); err != nil {
		c.logger.Error("failed to update cart line", "productID", productID, "quantity", quantity, "error", err)
		return err
	}
	return c.Load(ctx)
}

// Clear empties the cart. With no authenticated session this is a
// logged no-op: there is no safe way to clear a guest cart server-side,
// so guests keep their lines. For authenticated sessions the local
// items are emptied directly after the DELETE; an empty result is
// unambiguous, so no refetch is needed.
func (c *Cache) Clear(ctx context.Context) error {
	if !c.session.Authenticated() {
		c.logger.Warn("clear cart skipped: no authenticated session")
		return nil
	}

	if err := c.client.ClearCart(ctx); err != nil {
		c.logger.Error("failed to clear cart", "error", err)
		return err
	}

	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()

	c.logger.Debug("cart cleared")
	c.publish()
	return nil
}
