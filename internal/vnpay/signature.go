package vnpay

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNoSecret is returned when a Signer is built without a hash secret.
// A missing secret is a deployment mistake, not a per-request condition.
var ErrNoSecret = errors.New("vnpay: hash secret is not configured")

// Signer computes and checks VNPay secure hashes (HMAC-SHA512 over the
// canonical payload, lowercase hex).
type Signer struct {
	secret []byte
}

// NewSigner creates a Signer. It fails fast when the secret is empty so
// that misconfiguration surfaces at startup instead of silently
// rejecting every callback.
func NewSigner(secret string) (*Signer, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Signer{secret: []byte(secret)}, nil
}

// Sign returns the lowercase hex HMAC-SHA512 of payload.
func (s *Signer) Sign(payload string) string {
	mac := hmac.New(sha512.New, s.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether provided is the valid signature of payload.
// The comparison runs over the full hash length regardless of where a
// mismatch occurs, so response timing reveals nothing about how many
// leading bytes matched. Malformed or empty signatures simply fail.
func (s *Signer) Verify(payload, provided string) bool {
	want := s.Sign(payload)
	got := strings.ToLower(strings.TrimSpace(provided))
	return hmac.Equal([]byte(want), []byte(got))
}

// VerifyParams canonicalizes params and checks the embedded secure hash.
func (s *Signer) VerifyParams(params CallbackParams) bool {
	if params.SecureHash() == "" {
		return false
	}
	return s.Verify(Canonicalize(params), params.SecureHash())
}
