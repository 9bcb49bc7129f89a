// Package checkout turns the current cart into an order, holding the
// cart lock for the duration of the transaction.
package checkout

import (
	"context"
	"log/slog"

	"github.com/tiketto/tiketto/internal/domain"
	"github.com/tiketto/tiketto/internal/notify"
)

// Cart is the cache surface checkout needs. *cart.Cache satisfies it.
type Cart interface {
	Items() []domain.CartLine
	Locked() bool
	SetLocked(bool)
	Load(ctx context.Context) error
}

// Service runs the checkout transaction. Payment collection is out of
// scope; the service posts the order and reconciles the cart after.
type Service struct {
	client   domain.CheckoutClient
	cart     Cart
	notifier notify.Notifier
	logger   *slog.Logger
}

// NewService creates a checkout service.
func NewService(client domain.CheckoutClient, cart Cart, notifier notify.Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{client: client, cart: cart, notifier: notifier, logger: logger}
}

// PlaceOrder submits the cart as an order. The cart lock is taken for
// the whole transaction so every mutation attempt is rejected locally
// while the order is in flight, and released on any exit path.
func (s *Service) PlaceOrder(ctx context.Context) (string, error) {
	if s.cart.Locked() {
		return "", domain.ErrCartLocked
	}
	if len(s.cart.Items()) == 0 {
		return "", domain.ErrEmptyCart
	}

	s.cart.SetLocked(true)
	defer s.cart.SetLocked(false)

	orderID, err := s.client.PlaceOrder(ctx)
	if err != nil {
		s.logger.Error("failed to place order", "error", err)
		s.notifier.Notify(notify.Event{Level: notify.LevelError, Kind: notify.KindOrderFailed})
		return "", err
	}

	s.logger.Info("order placed", "orderID", orderID)
	s.notifier.Notify(notify.Event{Level: notify.LevelSuccess, Kind: notify.KindOrderPlaced})

	// The order consumed the cart server-side; reconcile with a fresh
	// read rather than guessing locally.
	if err := s.cart.Load(ctx); err != nil {
		s.logger.Warn("failed to reload cart after order", "error", err)
	}

	return orderID, nil
}
