// Package crypt provides AES-256-GCM authenticated encryption keyed from
// APP_KEY (falling back to JWT_SECRET).
//
// Output is base64url(nonce || ciphertext || tag), safe for cookies:
//
//	enc, err := crypt.Encrypt(sessionID)
//	id, err := crypt.Decrypt(enc)
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/shashiranjanraj/shopease/config"
)

// ErrDecrypt is returned when decryption or authentication fails.
var ErrDecrypt = errors.New("crypt: decryption failed")

func aead() (cipher.AEAD, error) {
	secret := config.Get("APP_KEY", config.JWTSecret())
	if secret == "" {
		return nil, errors.New("crypt: APP_KEY not configured")
	}
	k := sha256.Sum256([]byte(secret))

	block, err := aes.NewCipher(k[:])
	if err != nil {
		return nil, fmt.Errorf("crypt: new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("crypt: new GCM: %w", err)
	}
	return gcm, nil
}

// Encrypt encrypts plaintext and returns a base64url string.
func Encrypt(plaintext string) (string, error) {
	gcm, err := aead()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("crypt: nonce: %w", err)
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt. Any tampering yields ErrDecrypt.
func Decrypt(encoded string) (string, error) {
	gcm, err := aead()
	if err != nil {
		return "", err
	}

	data, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(data) < gcm.NonceSize() {
		return "", ErrDecrypt
	}

	nonce, ciphertext := data[:gcm.NonceSize()], data[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecrypt
	}
	return string(plain), nil
}
