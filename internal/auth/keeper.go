package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// Keeper encrypts platform account passwords at rest with AES-256-GCM.
// The key is derived from the configured credential key by SHA-256, so any
// passphrase length works.
type Keeper struct {
	aead cipher.AEAD
}

// NewKeeper builds a Keeper from the configured credential key.
func NewKeeper(credentialKey string) (*Keeper, error) {
	sum := sha256.Sum256([]byte(credentialKey))
	block, err := aes.NewCipher(sum[:])
	if err != nil {
		return nil, fmt.Errorf("auth: building cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("auth: building GCM: %w", err)
	}
	return &Keeper{aead: aead}, nil
}

// Encrypt seals plaintext and returns a base64 string safe for a text column.
func (k *Keeper) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, k.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("auth: generating nonce: %w", err)
	}
	sealed := k.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// ErrBadCiphertext is returned when a stored credential cannot be decrypted.
var ErrBadCiphertext = errors.New("auth: cannot decrypt stored credential")

// Decrypt reverses Encrypt.
func (k *Keeper) Decrypt(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadCiphertext
	}
	ns := k.aead.NonceSize()
	if len(raw) < ns {
		return "", ErrBadCiphertext
	}
	plain, err := k.aead.Open(nil, raw[:ns], raw[ns:], nil)
	if err != nil {
		return "", ErrBadCiphertext
	}
	return string(plain), nil
}
