package token

import (
	"encoding/base64"

	"golang.org/x/crypto/blake2b"
)

// Hash is a non-reversible fingerprint of a token, safe to log.
func Hash(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
