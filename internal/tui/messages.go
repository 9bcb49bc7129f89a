package tui

import (
	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/notify"
)

// Message types for the TUI

// CartReloadedMsg signals that a reload attempt settled; the cache and
// reloader status are re-read when it arrives.
type CartReloadedMsg struct{}

// CartChangedMsg carries a fresh cache snapshot after a mutation.
type CartChangedMsg struct {
	Snapshot domain.CartSnapshot
}

// ProductsLoadedMsg signals that the catalog has been fetched
type ProductsLoadedMsg struct {
	Products []domain.Product
	Err      error
}

// AdjustDoneMsg signals that a quantity adjustment settled
type AdjustDoneMsg struct{}

// ClearDoneMsg signals that a clear-cart request settled. Cleared is
// false for the guest no-op path, which gets no toast.
type ClearDoneMsg struct {
	Err     error
	Cleared bool
}

// CheckoutDoneMsg signals that an order attempt settled
type CheckoutDoneMsg struct {
	OrderID string
	Err     error
}

// NotificationMsg carries one toast event off the notifier channel
type NotificationMsg struct {
	Event notify.Event
}

// ToastExpiredMsg removes a displayed toast after its timeout
type ToastExpiredMsg struct {
	ID int
}

// LanguageChangedMsg signals the active language switched; cart and
// catalog re-fetch so denormalized display text matches.
type LanguageChangedMsg struct {
	Language string
}
