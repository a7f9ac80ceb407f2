// Package secrets encrypts persisted session records at rest.
//
// A Box holds an AES-256-GCM key derived with HKDF-SHA256 from a 32-byte
// master key and a purpose string, so one master key can serve several
// independent uses. Ciphertexts carry a random nonce and may be bound to
// associated data such as the storage key they are written under.
//
// SealedStorage wraps any storage.Storage and seals every value with the
// item key as associated data. A sealed value copied under another key fails
// to open.
//
//	key, err := secrets.ParseKey(os.Getenv("SESSION_ENCRYPTION_KEY"))
//	box, err := secrets.NewBox(key, "session-record")
//	backend = secrets.NewSealedStorage(backend, box)
//
// Generate a key with GenerateKey and encode it with EncodeKey.
package secrets
