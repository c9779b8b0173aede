package reconcile

import (
	"context"
	"sync"
	"time"

	"vnpgate/internal/models"
)

// MemoryLedger is a mutex-guarded in-memory Ledger. It backs the tests
// and serves as the runtime fallback when no database is configured,
// the same way the webhook deduper falls back when Redis is absent.
type MemoryLedger struct {
	mu     sync.Mutex
	orders map[string]*models.Order
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{orders: make(map[string]*models.Order)}
}

// Put stores an order, keyed by its OrderID.
func (l *MemoryLedger) Put(order *models.Order) {
	l.mu.Lock()
	defer l.mu.Unlock()
	copied := *order
	l.orders[order.OrderID] = &copied
}

// Create stores an order, matching the repository signature so the
// order API can run against either backend.
func (l *MemoryLedger) Create(_ context.Context, order *models.Order) error {
	l.Put(order)
	return nil
}

func (l *MemoryLedger) FindByReference(_ context.Context, ref string) (*models.Order, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.orders[ref]
	if !ok {
		return nil, nil
	}
	copied := *order
	return &copied, nil
}

func (l *MemoryLedger) TransitionIfPending(_ context.Context, orderID string, newStatus models.OrderStatus) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	order, ok := l.orders[orderID]
	if !ok || order.Status != models.OrderStatusPending {
		return false, nil
	}
	order.Status = newStatus
	order.UpdatedAt = time.Now()
	return true, nil
}
