package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"strings"
)

// textPrefix marks the format of SealString output.
const textPrefix = "v1."

// Box seals and opens data with one derived key. It is safe for concurrent
// use.
type Box struct {
	aead cipher.AEAD
}

// NewBox derives a key for purpose from master.
func NewBox(master []byte, purpose string) (*Box, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKey
	}
	key, err := deriveKey(master, purpose)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, errors.Join(ErrInvalidKey, err)
	}
	return &Box{aead: aead}, nil
}

// Seal returns nonce || ciphertext || tag.
func (b *Box) Seal(plaintext, aad []byte) ([]byte, error) {
	nonce := make([]byte, b.aead.NonceSize(), b.aead.NonceSize()+len(plaintext)+b.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, errors.Join(ErrSealFailed, err)
	}
	return b.aead.Seal(nonce, nonce, plaintext, aad), nil
}

func (b *Box) Open(sealed, aad []byte) ([]byte, error) {
	n := b.aead.NonceSize()
	if len(sealed) < n+b.aead.Overhead() {
		return nil, ErrInvalidCiphertext
	}
	plaintext, err := b.aead.Open(nil, sealed[:n], sealed[n:], aad)
	if err != nil {
		return nil, errors.Join(ErrOpenFailed, err)
	}
	return plaintext, nil
}

// SealString seals s into printable text.
func (b *Box) SealString(s string, aad []byte) (string, error) {
	sealed, err := b.Seal([]byte(s), aad)
	if err != nil {
		return "", err
	}
	return textPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (b *Box) OpenString(s string, aad []byte) (string, error) {
	encoded, ok := strings.CutPrefix(s, textPrefix)
	if !ok {
		return "", ErrInvalidCiphertext
	}
	sealed, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", errors.Join(ErrInvalidCiphertext, err)
	}
	plaintext, err := b.Open(sealed, aad)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
