package vnpay

import "net/url"

// Well-known VNPay callback parameter names.
const (
	ParamAmount            = "vnp_Amount"
	ParamBankCode          = "vnp_BankCode"
	ParamBankTranNo        = "vnp_BankTranNo"
	ParamCardType          = "vnp_CardType"
	ParamOrderInfo         = "vnp_OrderInfo"
	ParamPayDate           = "vnp_PayDate"
	ParamResponseCode      = "vnp_ResponseCode"
	ParamSecureHash        = "vnp_SecureHash"
	ParamSecureHashType    = "vnp_SecureHashType"
	ParamTmnCode           = "vnp_TmnCode"
	ParamTransactionNo     = "vnp_TransactionNo"
	ParamTransactionStatus = "vnp_TransactionStatus"
	ParamTxnRef            = "vnp_TxnRef"
)

// CallbackParams holds the raw parameter set of one gateway callback,
// as received on the wire. Keys are unique; the signature travels in
// vnp_SecureHash and is never part of the signed payload.
type CallbackParams map[string]string

// ParamsFromValues flattens url.Values into CallbackParams, keeping the
// first value of each key. VNPay never sends repeated keys; extras are
// attacker noise and get dropped.
func ParamsFromValues(values url.Values) CallbackParams {
	params := make(CallbackParams, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			params[key] = vals[0]
		}
	}
	return params
}

// Get returns the value for key, or "" when absent.
func (p CallbackParams) Get(key string) string {
	return p[key]
}

// SecureHash returns the signature field carried by the callback.
func (p CallbackParams) SecureHash() string {
	return p[ParamSecureHash]
}

// TxnRef returns the merchant order reference carried by the callback.
func (p CallbackParams) TxnRef() string {
	return p[ParamTxnRef]
}
