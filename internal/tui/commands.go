package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tiketto/tiketto/internal/domain"
)

const toastLifetime = 4 * time.Second

// reloadCartCmd runs one supervised reload attempt. Rapid re-triggers
// (pane open, language switch, manual refresh) are safe: the reloader
// cancels the superseded attempt and only the newest outcome lands.
func (m *Model) reloadCartCmd() tea.Cmd {
	return func() tea.Msg {
		m.reloader.Reload(context.Background())
		return CartReloadedMsg{}
	}
}

// loadCatalogCmd fetches the product catalog in the active language.
func (m *Model) loadCatalogCmd() tea.Cmd {
	return func() tea.Msg {
		products, err := m.catalog.Refresh(context.Background())
		return ProductsLoadedMsg{Products: products, Err: err}
	}
}

// adjustCmd sets an existing line's quantity. Outcome reporting goes
// through the notifier, so the command itself only signals settlement.
func (m *Model) adjustCmd(line domain.CartLine, desired int) tea.Cmd {
	return func() tea.Msg {
		m.adjuster.AdjustQuantity(context.Background(), line, desired)
		return AdjustDoneMsg{}
	}
}

// addToCartCmd introduces a new line with quantity 1, or bumps the
// existing line when the product is already in the cart.
func (m *Model) addToCartCmd(product domain.Product) tea.Cmd {
	if line, ok := m.cache.Item(product.ID); ok {
		return m.adjustCmd(line, line.Quantity+1)
	}
	return func() tea.Msg {
		m.adjuster.AddToCart(context.Background(), product, 1)
		return AdjustDoneMsg{}
	}
}

func (m *Model) clearCartCmd() tea.Cmd {
	return func() tea.Msg {
		authed := m.resolver.Authenticated()
		err := m.cache.Clear(context.Background())
		return ClearDoneMsg{Err: err, Cleared: err == nil && authed}
	}
}

func (m *Model) checkoutCmd() tea.Cmd {
	return func() tea.Msg {
		orderID, err := m.checkout.PlaceOrder(context.Background())
		return CheckoutDoneMsg{OrderID: orderID, Err: err}
	}
}

// switchLanguageCmd cycles to the next configured language, persists
// it, and points the resolver at it so the very next request carries
// the new Accept-Language.
func (m *Model) switchLanguageCmd() tea.Cmd {
	next := m.nextLanguage()
	return func() tea.Msg {
		m.resolver.SetLanguage(next)
		if err := m.langStore.SaveLanguage(next); err != nil {
			m.logger.Warn("failed to persist language", "language", next, "error", err)
		}
		return LanguageChangedMsg{Language: next}
	}
}

func (m *Model) nextLanguage() string {
	for i, lang := range m.languages {
		if lang == m.language {
			return m.languages[(i+1)%len(m.languages)]
		}
	}
	return m.languages[0]
}

// waitForEventCmd blocks on the notifier channel and feeds the next
// toast into the update loop. Re-issued after every received event.
func (m *Model) waitForEventCmd() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return nil
		}
		return NotificationMsg{Event: event}
	}
}

func (m *Model) expireToastCmd(id int) tea.Cmd {
	return tea.Tick(toastLifetime, func(time.Time) tea.Msg {
		return ToastExpiredMsg{ID: id}
	})
}
