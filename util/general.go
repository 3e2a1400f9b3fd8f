package util

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"github.com/go-playground/validator/v10"
)

// Validate is the shared validator for config and request structs.
var Validate = validator.New()

func randomBytes(n int) []byte {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// the system entropy source failing is unrecoverable
		panic(err)
	}
	return b
}

// RandomHex returns n random bytes hex-encoded (2n characters). Player
// identifiers use RandomHex(3).
func RandomHex(n int) string {
	return hex.EncodeToString(randomBytes(n))
}

// InviteKey returns a URL-safe room invite key.
func InviteKey() string {
	return base64.RawURLEncoding.EncodeToString(randomBytes(12))
}
