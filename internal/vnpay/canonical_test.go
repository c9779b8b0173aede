package vnpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeSortsKeys(t *testing.T) {
	params := CallbackParams{
		"vnp_TxnRef":       "ORDER1",
		"vnp_Amount":       "5000000",
		"vnp_ResponseCode": "00",
	}

	payload := Canonicalize(params)
	assert.Equal(t, "vnp_Amount=5000000&vnp_ResponseCode=00&vnp_TxnRef=ORDER1", payload)
}

func TestCanonicalizeExcludesSignatureFields(t *testing.T) {
	params := CallbackParams{
		"vnp_TxnRef":        "ORDER1",
		ParamSecureHash:     "deadbeef",
		ParamSecureHashType: "HmacSHA512",
	}

	payload := Canonicalize(params)
	assert.Equal(t, "vnp_TxnRef=ORDER1", payload)
}

func TestCanonicalizeEncodesValues(t *testing.T) {
	params := CallbackParams{
		"vnp_OrderInfo": "Thanh toan don hang #42 & more",
	}

	payload := Canonicalize(params)
	assert.Equal(t, "vnp_OrderInfo=Thanh+toan+don+hang+%2342+%26+more", payload)
}

func TestCanonicalizeKeepsEmptyValues(t *testing.T) {
	params := CallbackParams{
		"vnp_BankCode": "",
		"vnp_TxnRef":   "ORDER1",
	}

	payload := Canonicalize(params)
	assert.Equal(t, "vnp_BankCode=&vnp_TxnRef=ORDER1", payload)
}

func TestCanonicalizeIsDeterministic(t *testing.T) {
	params := CallbackParams{
		"vnp_Amount":       "100000",
		"vnp_BankCode":     "NCB",
		"vnp_ResponseCode": "00",
		"vnp_TxnRef":       "ORDER1",
		ParamSecureHash:    "abc",
	}

	first := Canonicalize(params)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Canonicalize(params))
	}
}
