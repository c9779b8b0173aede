package reconcile

import (
	"context"

	"vnpgate/internal/models"
)

// Ledger is the narrow port the engine consumes for order storage.
// FindByReference returns (nil, nil) when no order matches.
// TransitionIfPending must be atomic with respect to concurrent callers
// for the same order: it applies the transition only when the current
// status is still pending and reports whether it did. That single
// conditional write is what keeps duplicate gateway deliveries from
// completing an order twice.
type Ledger interface {
	FindByReference(ctx context.Context, ref string) (*models.Order, error)
	TransitionIfPending(ctx context.Context, orderID string, newStatus models.OrderStatus) (bool, error)
}
