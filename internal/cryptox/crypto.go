// Package cryptox seals user secrets before they are written to the
// database.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const secretsInfo = "fe user secrets"

var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Sealer encrypts small values with XChaCha20-Poly1305 under a key derived
// from the server secret. Output is nonce||ciphertext.
type Sealer struct {
	key []byte
}

// NewSealer derives the sealing key from serverSecret with HKDF-SHA256.
func NewSealer(serverSecret []byte) (*Sealer, error) {
	if len(serverSecret) == 0 {
		return nil, errors.New("empty server secret")
	}
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, serverSecret, nil, []byte(secretsInfo)), key); err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return &Sealer{key: key}, nil
}

// Seal encrypts plaintext. aad binds the ciphertext to its owner, so a
// sealed secret copied to another row does not open.
func (s *Sealer) Seal(plaintext, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, aad), nil
}

// Open reverses Seal.
func (s *Sealer) Open(sealed, aad []byte) ([]byte, error) {
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < aead.NonceSize()+aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}
	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	return aead.Open(nil, nonce, ciphertext, aad)
}
