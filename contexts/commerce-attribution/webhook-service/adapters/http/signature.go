package httpadapter

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// ComputeSignature returns the base64 HMAC-SHA-256 digest of the raw body
// under the per-store shared secret, matching what the platform sends in
// X-Commerce-Hmac-Sha256.
func ComputeSignature(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time; the digest is computed over
// the exact bytes received, before any parsing.
func VerifySignature(secret string, body []byte, provided string) bool {
	expected := ComputeSignature(secret, body)
	return hmac.Equal([]byte(expected), []byte(provided))
}
