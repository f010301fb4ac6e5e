package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes from crypto/rand. It panics if the
// system random source fails, which leaves nothing sensible to continue with.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// WipeByteArray zeroes b in place. Used for passwords and derived keys.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
