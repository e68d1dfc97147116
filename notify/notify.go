// Package notify tells customers and the shop about placed orders.
package notify

import (
	"context"
	"errors"
	"log/slog"

	"github.com/judyrop/handmade-store/models"
)

type Notifier interface {
	OrderPlaced(ctx context.Context, order models.Order) error
}

type Nop struct{}

func (Nop) OrderPlaced(context.Context, models.Order) error { return nil }

// Multi sends to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) OrderPlaced(ctx context.Context, order models.Order) error {
	var errs []error
	for _, n := range m {
		if err := n.OrderPlaced(ctx, order); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Logged wraps n so failures are logged instead of returned.
func Logged(n Notifier) Notifier {
	return logged{next: n}
}

type logged struct {
	next Notifier
}

func (l logged) OrderPlaced(ctx context.Context, order models.Order) error {
	if err := l.next.OrderPlaced(ctx, order); err != nil {
		slog.ErrorContext(ctx, "order notification failed",
			slog.Uint64("order_id", uint64(order.ID)),
			slog.Any("err", err))
	}
	return nil
}
