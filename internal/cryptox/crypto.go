// Package cryptox seals the client-persisted session cache so a copied
// cache file does not leak identity tokens.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"

	"golang.org/x/crypto/argon2"
)

// KeySize is the AES-256 key length produced by DeriveKey.
const KeySize = 32

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// DeriveKey stretches secret with argon2id into a KeySize-byte key.
func DeriveKey(secret []byte, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, KeySize)
}

// SealJSON marshals v and encrypts it with AES-GCM under key. The returned
// blob is nonce || ciphertext.
func SealJSON(v any, key []byte) ([]byte, error) {
	plaintext, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}

	return aead.Seal(nonce, nonce, plaintext, nil), nil
}

// OpenJSON reverses SealJSON and unmarshals the plaintext into v.
func OpenJSON(blob []byte, key []byte, v any) error {
	aead, err := newGCM(key)
	if err != nil {
		return err
	}

	ns := aead.NonceSize()
	if len(blob) < ns {
		return ErrCiphertextTooShort
	}

	plaintext, err := aead.Open(nil, blob[:ns], blob[ns:], nil)
	if err != nil {
		return err
	}
	return json.Unmarshal(plaintext, v)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
