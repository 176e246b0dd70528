// Package cipher provides the session's pluggable CryptoContext and a
// ChaCha20-Poly1305 reference implementation of it, keyed through
// HKDF. The transport core never hard-codes a cipher — [wire.Cipher]
// is satisfied by anything with Encrypt/Decrypt, matching the
// reference's function-pointer CryptoContext collaborator.
package cipher

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// Context is the reference session cipher: AEAD encryption with a
// per-packet random nonce prepended to the ciphertext. Decrypt expects
// that same layout.
type Context struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
		NonceSize() int
	}
}

// NewContext derives a ChaCha20-Poly1305 key from secret via HKDF-SHA256
// and returns a ready-to-use Context. info distinguishes independent
// derivations from the same shared secret (e.g. handshake nonce).
func NewContext(secret, info []byte) (*Context, error) {
	reader := hkdf.New(sha256.New, secret, nil, info)
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("cipher: derive key: %w", err)
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("cipher: init aead: %w", err)
	}
	return &Context{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce and returns
// nonce||ciphertext. The caller's input buffer is not reused or
// retained.
func (c *Context) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("cipher: generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// Decrypt splits the leading nonce off ciphertext and opens the rest.
func (c *Context) Decrypt(ciphertext []byte) ([]byte, error) {
	n := c.aead.NonceSize()
	if len(ciphertext) < n {
		return nil, fmt.Errorf("cipher: ciphertext shorter than nonce")
	}
	nonce, sealed := ciphertext[:n], ciphertext[n:]
	plaintext, err := c.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("cipher: open: %w", err)
	}
	return plaintext, nil
}
