package common

import (
	"crypto/rand"
)

// GenerateRandByteArray returns n cryptographically random bytes.
// crypto/rand.Read never fails on supported platforms.
func GenerateRandByteArray(n int) []byte {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return b
}

// WipeByteArray zeroes b in place. Nil is fine.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
