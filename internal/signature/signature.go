// Package signature computes and checks the per-request HMAC that every
// authenticated Fe call carries.
//
// The signed material is identity+operationKey, keyed by the user's shared
// secret, and the signature travels as lowercase hex. The operation key is
// different for every endpoint (see package protocol), which binds a
// signature to the operation it was produced for.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign returns hex(HMAC-SHA256(secret, identity+operationKey)).
func Sign(identity, operationKey, secret string) string {
	return hex.EncodeToString(mac(identity, operationKey, secret))
}

// Verify recomputes the signature and compares it with candidate in
// constant time.
func Verify(identity, operationKey, secret, candidate string) bool {
	expected := Sign(identity, operationKey, secret)
	return hmac.Equal([]byte(expected), []byte(candidate))
}

func mac(identity, operationKey, secret string) []byte {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(identity))
	h.Write([]byte(operationKey))
	return h.Sum(nil)
}
