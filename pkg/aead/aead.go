// Package aead implements the AES-256-GCM share-encryption framing spec.md
// §6/§9 defines for round 2 of the keygen protocol: the 12-byte nonce is
// carried in a field named Tag (naming inherited from the source protocol
// this spec was distilled from), and authenticated data is always 16 zero
// bytes — kept for wire compatibility even though it binds no protocol
// context (see DESIGN.md's resolution of this Open Question).
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
)

// KeySize is the length in bytes of an AES-256-GCM key.
const KeySize = 32

// NonceSize is the length in bytes of the GCM nonce.
const NonceSize = 12

// aad is the 16 zero-byte additional authenticated data every frame uses.
var aad [16]byte

// Frame is the wire framing of one encrypted share: ciphertext (including the
// GCM authentication tag) plus the nonce, named Tag per the source
// convention this format was inherited from.
type Frame struct {
	Ciphertext []byte `cbor:"ciphertext"`
	Tag        []byte `cbor:"tag"` // 12-byte GCM nonce, not the auth tag
}

// Seal encrypts plaintext under key, sampling a fresh random nonce.
func Seal(key, plaintext []byte) (*Frame, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aead: key must be %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aead: building AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("aead: building GCM: %w", err)
	}
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("aead: reading nonce randomness: %w", err)
	}
	ciphertext := gcm.Seal(nil, nonce, plaintext, aad[:])
	return &Frame{Ciphertext: ciphertext, Tag: nonce}, nil
}

// Open decrypts a Frame under key.
func Open(key []byte, f *Frame) ([]byte, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("aead: key must be %d bytes, got %d", KeySize, len(key))
	}
	if len(f.Tag) != NonceSize {
		return nil, fmt.Errorf("aead: nonce must be %d bytes, got %d", NonceSize, len(f.Tag))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aead: building AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, NonceSize)
	if err != nil {
		return nil, fmt.Errorf("aead: building GCM: %w", err)
	}
	plaintext, err := gcm.Open(nil, f.Tag, f.Ciphertext, aad[:])
	if err != nil {
		return nil, fmt.Errorf("aead: decryption failed: %w", err)
	}
	return plaintext, nil
}
