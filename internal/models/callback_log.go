package models

import "time"

// CallbackLog maps to the `callback_logs` table. One row per processed
// IPN delivery: the raw parameter snapshot, whether the signature
// checked out, and the disposition we answered with. Audit trail only;
// the reconciliation flow never reads it back.
type CallbackLog struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID       string    `gorm:"column:order_id;size:100;index" json:"order_id"`
	TransactionNo string    `gorm:"column:transaction_no;size:100" json:"transaction_no"`
	Params        string    `gorm:"column:params;type:text" json:"params"`
	IsAuthentic   bool      `gorm:"column:is_authentic" json:"is_authentic"`
	Disposition   string    `gorm:"column:disposition;size:40" json:"disposition"`
	RspCode       string    `gorm:"column:rsp_code;size:10" json:"rsp_code"`
	ReceivedAt    time.Time `gorm:"column:received_at" json:"received_at"`
}

func (CallbackLog) TableName() string {
	return "callback_logs"
}
