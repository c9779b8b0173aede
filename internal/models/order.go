package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusFailed    OrderStatus = "failed"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order maps to the `orders` table. Amount is in minor currency units
// (VND has no subunit, so this is the whole-dong amount; the gateway
// reports it scaled by 100 on the wire). Status only ever moves out of
// pending, and completed is terminal.
type Order struct {
	ID        uint        `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	OrderID   string      `gorm:"column:order_id;size:100;uniqueIndex" json:"order_id"`
	Amount    int64       `gorm:"column:amount" json:"amount"`
	OrderInfo string      `gorm:"column:order_info;size:500" json:"order_info"`
	Status    OrderStatus `gorm:"column:status;size:20;index" json:"status"`
	CreatedAt time.Time   `gorm:"column:created_at" json:"created_at"`
	UpdatedAt time.Time   `gorm:"column:updated_at" json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}
