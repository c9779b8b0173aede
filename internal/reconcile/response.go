package reconcile

// Ack is the two-field acknowledgement body VNPay expects back from an
// IPN endpoint. The codes are a protocol contract: a "00" stops the
// gateway's retries, a "99" asks it to try again later.
type Ack struct {
	RspCode string `json:"RspCode"`
	Message string `json:"Message"`
}

// EncodeAck maps a Disposition to its acknowledgement. Total: every
// disposition has exactly one row here. RejectedByGateway acks "00"
// because the delivery itself was valid and must not be retried, even
// though no order was completed.
func EncodeAck(d Disposition) Ack {
	switch d {
	case DispositionConfirmed, DispositionRejectedByGateway:
		return Ack{RspCode: "00", Message: "Confirm Success"}
	case DispositionOrderNotFound:
		return Ack{RspCode: "01", Message: "Order not found"}
	case DispositionAlreadyConfirmed:
		return Ack{RspCode: "02", Message: "Order already confirmed"}
	case DispositionAmountMismatch:
		return Ack{RspCode: "04", Message: "Invalid amount"}
	case DispositionInvalidSignature:
		return Ack{RspCode: "97", Message: "Invalid signature"}
	default:
		return Ack{RspCode: "99", Message: "Unknown error"}
	}
}
