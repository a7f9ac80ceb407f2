package secrets

import "errors"

var (
	ErrInvalidKey        = errors.New("secrets.invalid_key")
	ErrKeyDerivation     = errors.New("secrets.key_derivation_failed")
	ErrSealFailed        = errors.New("secrets.seal_failed")
	ErrOpenFailed        = errors.New("secrets.open_failed")
	ErrInvalidCiphertext = errors.New("secrets.invalid_ciphertext")
)
