package vnpay

// ResponseCodeSuccess is the gateway code for an approved transaction.
const ResponseCodeSuccess = "00"

// responseCodeMessages describes the gateway's documented result codes.
// Unlisted codes are treated as declined with a generic message.
var responseCodeMessages = map[string]string{
	"00": "Transaction approved",
	"07": "Suspected fraud, transaction held",
	"09": "Card not registered for online banking",
	"10": "Card authentication failed too many times",
	"11": "Payment deadline expired",
	"12": "Card or account is locked",
	"13": "Incorrect OTP",
	"24": "Transaction cancelled by customer",
	"51": "Insufficient account balance",
	"65": "Daily transaction limit exceeded",
	"75": "Issuing bank under maintenance",
	"79": "Incorrect payment password too many times",
	"99": "Other error",
}

// VerificationResult is the immutable outcome of classifying one
// callback. IsSuccess is only ever true when IsAuthentic is true.
type VerificationResult struct {
	IsAuthentic  bool
	IsSuccess    bool
	ResponseCode string
	Reason       string
}

// Classify interprets the gateway result fields of an already
// signature-checked callback. When isAuthentic is false no other field
// is consulted: a forged callback must not be able to smuggle a success
// code past an invalid signature.
func Classify(params CallbackParams, isAuthentic bool) VerificationResult {
	if !isAuthentic {
		return VerificationResult{Reason: "invalid secure hash"}
	}

	code := params.Get(ParamResponseCode)
	reason, known := responseCodeMessages[code]
	if !known {
		reason = "unrecognized response code"
	}

	return VerificationResult{
		IsAuthentic:  true,
		IsSuccess:    code == ResponseCodeSuccess,
		ResponseCode: code,
		Reason:       reason,
	}
}
