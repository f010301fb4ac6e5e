// Package cryptox seals small JSON documents (the cached session) with
// AES-GCM under a key derived from a passphrase.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/json"
	"errors"

	"github.com/KMDPriyashan/tripzy/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of the random salt stored next to sealed data.
const SaltSize = 16

var ErrShortKey = errors.New("cryptox: key must be 32 bytes")

// DeriveKey stretches passphrase into a 32-byte AES-256 key with argon2id.
func DeriveKey(passphrase []byte, salt []byte) []byte {
	return argon2.IDKey(passphrase, salt, 1, 64*1024, 4, 32)
}

// NewSalt returns a fresh random salt for DeriveKey.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// SealJSON serializes v to JSON and encrypts it with AES-GCM. A new random
// nonce is generated per call and returned separately from the ciphertext.
func SealJSON(v any, key []byte) (ciphertext, nonce []byte, err error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, nil, err
	}
	defer common.WipeByteArray(plaintext)

	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = common.GenerateRandByteArray(aead.NonceSize())
	return aead.Seal(nil, nonce, plaintext, nil), nonce, nil
}

// OpenJSON decrypts ciphertext produced by SealJSON and unmarshals the
// plaintext into v.
func OpenJSON(ciphertext, nonce, key []byte, v any) error {
	aead, err := newAEAD(key)
	if err != nil {
		return err
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(plaintext)

	return json.Unmarshal(plaintext, v)
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != 32 {
		return nil, ErrShortKey
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
