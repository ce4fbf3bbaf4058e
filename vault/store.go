// Package vault loads a cryptolight key that is stored encrypted by the
// HashiCorp Vault Transit secrets engine.
//
// The ciphertext is decrypted through Transit once, at construction time,
// and the key is held in a read-only cryptolight.StaticKeyStore.
//
// Usage:
//
//	store, err := vault.New(ctx, transitClient,
//	    vault.WithEncryptedKey("vault:v1:...", "my-transit-key"),
//	)
package vault

import (
	"context"
	"fmt"

	"github.com/rbaliyan/cryptolight"
)

// DefaultKeyLength is the decrypted key length expected unless WithKeyLength is given.
const DefaultKeyLength = 16

// Client abstracts the Vault Transit decrypt operation.
// This allows injecting a mock for testing or wrapping any Vault client library.
type Client interface {
	// TransitDecrypt decrypts ciphertext using the named Transit key.
	// The ciphertext should be in Vault's format (e.g., "vault:v1:base64data").
	// Returns the plaintext bytes.
	TransitDecrypt(ctx context.Context, keyName string, ciphertext string) ([]byte, error)
}

// Option configures New.
type Option func(*options)

type options struct {
	encryptedKey *encryptedKeyEntry
	keyLength    int
	err          error
}

type encryptedKeyEntry struct {
	ciphertext     string // Vault Transit ciphertext (e.g., "vault:v1:...")
	transitKeyName string
}

// WithEncryptedKey sets the Transit-encrypted key to decrypt at construction time.
// The transitKeyName is the name of the Transit key in Vault.
// Setting it twice is an error.
func WithEncryptedKey(ciphertext, transitKeyName string) Option {
	return func(o *options) {
		if o.encryptedKey != nil {
			o.err = fmt.Errorf("vault: encrypted key set twice")
			return
		}
		o.encryptedKey = &encryptedKeyEntry{
			ciphertext:     ciphertext,
			transitKeyName: transitKeyName,
		}
	}
}

// WithKeyLength sets the expected decrypted key length. The default is 16.
func WithKeyLength(n int) Option {
	return func(o *options) {
		o.keyLength = n
	}
}

// New decrypts the key with Vault Transit and returns a store holding it.
//
// Exactly one key must be provided via WithEncryptedKey.
// The store is read-only: Generate fails with cryptolight.ErrPersistence,
// since the key is owned by Vault and a replacement would not survive a
// restart.
// The decrypted bytes are zeroed once copied into the store, and the Vault
// client is not retained.
func New(ctx context.Context, client Client, opts ...Option) (*cryptolight.StaticKeyStore, error) {
	o := options{keyLength: DefaultKeyLength}
	for _, opt := range opts {
		opt(&o)
	}

	if o.err != nil {
		return nil, o.err
	}
	ek := o.encryptedKey
	if ek == nil {
		return nil, fmt.Errorf("vault: an encrypted key is required")
	}

	plaintext, err := client.TransitDecrypt(ctx, ek.transitKeyName, ek.ciphertext)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to decrypt key with transit key %q: %w", ek.transitKeyName, err)
	}
	defer clear(plaintext)

	store, err := cryptolight.NewStaticKeyStore(o.keyLength, cryptolight.WithKey(plaintext), cryptolight.WithReadOnly())
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return store, nil
}
