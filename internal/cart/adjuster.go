package cart

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/notify"
)

// Outcome classifies what a quantity change amounted to for the user.
type Outcome int

const (
	OutcomeAdded Outcome = iota
	OutcomeRemoved
	OutcomeUpdated
	OutcomeBlocked
	OutcomeStockExceeded
	OutcomeFailed
)

// Mutator is the cache surface the adjuster drives. *Cache satisfies it.
type Mutator interface {
	Locked() bool
	SetQuantity(ctx context.Context, productID string, quantity int) error
}

// Adjuster translates UI-level "set this line to N" intents into
// validated, notified cache mutations. Every +/- control and every
// add-to-cart action goes through it.
type Adjuster struct {
	cart     Mutator
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewAdjuster creates an adjuster over cart, publishing outcomes to
// notifier.
func NewAdjuster(cart Mutator, notifier notify.Notifier, logger *slog.Logger) *Adjuster {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Adjuster{cart: cart, notifier: notifier, logger: logger}
}

// AdjustQuantity sets line's quantity to desired. The lock check and
// the stock ceiling run locally before any network call; the stock
// check uses the last-loaded available count and is advisory only, the
// server re-validates on the write.
//
// On success the outcome is classified purely by comparing desired to
// the line's pre-call quantity; the server-applied result is only known
// after the mutation's internal reload, and intent, not confirmation,
// keys the notification.
func (a *Adjuster) AdjustQuantity(ctx context.Context, line domain.CartLine, desired int) Outcome {
	if a.cart.Locked() {
		a.logger.Debug("adjust rejected: cart locked", "productID", line.ID)
		a.notifier.Notify(notify.Event{Level: notify.LevelWarning, Kind: notify.KindCartLocked, ItemName: line.Name})
		return OutcomeBlocked
	}

	if desired < 0 {
		desired = 0
	}

	if desired > line.AvailableQuantity {
		a.logger.Debug("adjust rejected: not enough stock",
			"productID", line.ID, "desired", desired, "available", line.AvailableQuantity)
		a.notifier.Notify(notify.Event{
			Level:    notify.LevelWarning,
			Kind:     notify.KindStockExceeded,
			ItemName: line.Name,
			Count:    line.AvailableQuantity,
		})
		return OutcomeStockExceeded
	}

	if err := a.cart.SetQuantity(ctx, line.ID, desired); err != nil {
		return a.reportFailure(err, line.Name)
	}

	switch {
	case desired > line.Quantity:
		a.notifier.Notify(notify.Event{Level: notify.LevelSuccess, Kind: notify.KindItemAdded, ItemName: line.Name})
		return OutcomeAdded
	case desired < line.Quantity:
		a.notifier.Notify(notify.Event{Level: notify.LevelSuccess, Kind: notify.KindItemRemoved, ItemName: line.Name})
		return OutcomeRemoved
	default:
		a.notifier.Notify(notify.Event{Level: notify.LevelInfo, Kind: notify.KindQuantityUpdated, ItemName: line.Name})
		return OutcomeUpdated
	}
}

// AddToCart introduces a brand-new line (from a product page rather
// than an existing cart row). Same lock-check, clamp, stock-check, and
// mutate shape as AdjustQuantity, but success always reports "added".
func (a *Adjuster) AddToCart(ctx context.Context, product domain.Product, desired int) Outcome {
	if a.cart.Locked() {
		a.logger.Debug("add rejected: cart locked", "productID", product.ID)
		a.notifier.Notify(notify.Event{Level: notify.LevelWarning, Kind: notify.KindCartLocked, ItemName: product.Name})
		return OutcomeBlocked
	}

	if desired < 0 {
		desired = 0
	}

	if desired > product.AvailableQuantity {
		a.logger.Debug("add rejected: not enough stock",
			"productID", product.ID, "desired", desired, "available", product.AvailableQuantity)
		a.notifier.Notify(notify.Event{
			Level:    notify.LevelWarning,
			Kind:     notify.KindStockExceeded,
			ItemName: product.Name,
			Count:    product.AvailableQuantity,
		})
		return OutcomeStockExceeded
	}

	if err := a.cart.SetQuantity(ctx, product.ID, desired); err != nil {
		return a.reportFailure(err, product.Name)
	}

	a.notifier.Notify(notify.Event{Level: notify.LevelSuccess, Kind: notify.KindItemAdded, ItemName: product.Name})
	return OutcomeAdded
}

// reportFailure maps a rejected mutation to an outcome. A server-side
// stock rejection gets the same warning as the local pre-check; stock
// can change between load and write, and the server's count wins.
func (a *Adjuster) reportFailure(err error, itemName string) Outcome {
	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		a.notifier.Notify(notify.Event{
			Level:    notify.LevelWarning,
			Kind:     notify.KindStockExceeded,
			ItemName: itemName,
			Count:    stockErr.Available,
		})
		return OutcomeStockExceeded
	}

	a.notifier.Notify(notify.Event{Level: notify.LevelError, Kind: notify.KindUpdateFailed, ItemName: itemName})
	return OutcomeFailed
}
