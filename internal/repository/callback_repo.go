package repository

import (
	"context"
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"vnpgate/internal/models"
	"vnpgate/internal/vnpay"
)

// CallbackRepository persists the IPN audit trail.
type CallbackRepository struct {
	db *gorm.DB
}

func NewCallbackRepository(db *gorm.DB) *CallbackRepository {
	return &CallbackRepository{db: db}
}

// Record stores one processed delivery. The raw secure hash is redacted
// from the snapshot; it is a shared-secret derivative and has no value
// in an audit row.
func (r *CallbackRepository) Record(ctx context.Context, params vnpay.CallbackParams, isAuthentic bool, disposition, rspCode string) error {
	snapshot := make(map[string]string, len(params))
	for key, val := range params {
		if key == vnpay.ParamSecureHash || key == vnpay.ParamSecureHashType {
			continue
		}
		snapshot[key] = val
	}
	raw, _ := json.Marshal(snapshot)

	entry := &models.CallbackLog{
		OrderID:       params.TxnRef(),
		TransactionNo: params.Get(vnpay.ParamTransactionNo),
		Params:        string(raw),
		IsAuthentic:   isAuthentic,
		Disposition:   disposition,
		RspCode:       rspCode,
		ReceivedAt:    time.Now(),
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindByOrderID returns the logged deliveries for one order, newest first.
func (r *CallbackRepository) FindByOrderID(ctx context.Context, orderID string) ([]models.CallbackLog, error) {
	var logs []models.CallbackLog
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("received_at DESC").
		Find(&logs).Error
	return logs, err
}
