package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/tiketto/tiketto/internal/notify"
	"github.com/tiketto/tiketto/internal/tui/styles"
)

// toast is one transient notification on screen.
type toast struct {
	id    int
	event notify.Event
}

// toastText renders an event's message in the active language. The
// cart layer publishes kinds, not strings; presentation text lives
// here with the rest of the UI.
func toastText(event notify.Event, lang string) string {
	table := toastTextEN
	if lang == "de" {
		table = toastTextDE
	}

	text, ok := table[event.Kind]
	if !ok {
		text = table[notify.KindUpdateFailed]
	}

	switch event.Kind {
	case notify.KindStockExceeded:
		return fmt.Sprintf(text, event.Count)
	case notify.KindItemAdded, notify.KindItemRemoved, notify.KindQuantityUpdated:
		if event.ItemName != "" {
			return fmt.Sprintf("%s: %s", event.ItemName, text)
		}
	}
	return text
}

var toastTextEN = map[notify.Kind]string{
	notify.KindItemAdded:       "added to cart",
	notify.KindItemRemoved:     "removed from cart",
	notify.KindQuantityUpdated: "quantity updated",
	notify.KindStockExceeded:   "not enough stock, only %d left",
	notify.KindCartLocked:      "cart is locked while checkout is running",
	notify.KindCartNotFound:    "your cart could not be found",
	notify.KindLoadFailed:      "failed to load the cart",
	notify.KindUpdateFailed:    "failed to update the cart",
	notify.KindOrderPlaced:     "order placed, see you at the show",
	notify.KindOrderFailed:     "checkout failed, your cart is unchanged",
	notify.KindCartCleared:     "cart cleared",
}

var toastTextDE = map[notify.Kind]string{
	notify.KindItemAdded:       "zum Warenkorb hinzugefügt",
	notify.KindItemRemoved:     "aus dem Warenkorb entfernt",
	notify.KindQuantityUpdated: "Menge aktualisiert",
	notify.KindStockExceeded:   "nicht genug Bestand, nur noch %d verfügbar",
	notify.KindCartLocked:      "Warenkorb ist während des Checkouts gesperrt",
	notify.KindCartNotFound:    "Warenkorb wurde nicht gefunden",
	notify.KindLoadFailed:      "Warenkorb konnte nicht geladen werden",
	notify.KindUpdateFailed:    "Warenkorb konnte nicht aktualisiert werden",
	notify.KindOrderPlaced:     "Bestellung aufgegeben",
	notify.KindOrderFailed:     "Checkout fehlgeschlagen, Warenkorb unverändert",
	notify.KindCartCleared:     "Warenkorb geleert",
}

// toastStyle picks the border style for a severity.
func toastStyle(level notify.Level) lipgloss.Style {
	switch level {
	case notify.LevelSuccess:
		return styles.ToastSuccessStyle
	case notify.LevelWarning:
		return styles.ToastWarningStyle
	case notify.LevelError:
		return styles.ToastErrorStyle
	default:
		return styles.ToastInfoStyle
	}
}

// renderToasts stacks active toasts newest-last.
func renderToasts(toasts []toast, lang string) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, len(toasts))
	for i, t := range toasts {
		rendered[i] = toastStyle(t.event.Level).Render(toastText(t.event, lang))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}
