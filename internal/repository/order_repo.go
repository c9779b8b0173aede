package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"vnpgate/internal/models"
)

// OrderRepository is the GORM-backed order ledger.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByReference returns the order with the given order_id, or
// (nil, nil) when no such order exists.
func (r *OrderRepository) FindByReference(ctx context.Context, ref string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("order_id = ?", ref).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// TransitionIfPending moves the order to newStatus only if it is still
// pending, and reports whether the transition was applied. The check
// and the write are one UPDATE, so two concurrent callers for the same
// order can never both see it applied: the database serializes the row
// write and only one statement matches the WHERE clause.
func (r *OrderRepository) TransitionIfPending(ctx context.Context, orderID string, newStatus models.OrderStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, models.OrderStatusPending).
		Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CancelStale cancels pending orders created before cutoff and returns
// how many were cancelled. Same conditional-update discipline as
// TransitionIfPending, so the sweeper cannot race a completing IPN.
func (r *OrderRepository) CancelStale(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("status = ? AND created_at < ?", models.OrderStatusPending, cutoff).
		Updates(map[string]interface{}{
			"status":     models.OrderStatusCancelled,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}
