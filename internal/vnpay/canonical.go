package vnpay

import (
	"net/url"
	"sort"
	"strings"
)

// Canonicalize builds the byte string VNPay signs: the parameter set
// minus the signature fields, keys sorted ascending by byte value,
// values percent-encoded with space as '+', joined as
// "key=value&key=value". Empty values are kept; dropping them would
// change the signed payload. The same payload is used for both the
// return-URL and IPN verification, so this is the single place the
// encoding lives.
func Canonicalize(params CallbackParams) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		if key == ParamSecureHash || key == ParamSecureHashType {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(params[key]))
	}
	return b.String()
}
