package pkg

import (
	"crypto/rand"
)

// claimAlphabet has 32 characters, so mapping a random byte with a modulo
// stays uniform. Ambiguous characters (0/O, 1/I/L) are left out.
const claimAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomString returns a cryptographically random string, used for order
// claim codes shown at pickup.
func RandomString(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	for i := range b {
		b[i] = claimAlphabet[int(b[i])%len(claimAlphabet)]
	}
	return string(b)
}
