// Package gcpkms loads a cryptolight key that is stored wrapped by Google
// Cloud KMS.
//
// The wrapped key is unwrapped with the CryptoKeys.Decrypt RPC once, at
// construction time, and held in a read-only cryptolight.StaticKeyStore.
//
// Usage:
//
//	client, err := kms.NewKeyManagementClient(ctx)
//	store, err := gcpkms.New(ctx, client,
//	    gcpkms.WithEncryptedKey(ciphertext, resourceName),
//	)
package gcpkms

import (
	"context"
	"fmt"

	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/rbaliyan/cryptolight"
)

// DefaultKeyLength is the unwrapped key length expected unless WithKeyLength is given.
const DefaultKeyLength = 16

// Client is the subset of the GCP Cloud KMS API used by this package.
type Client interface {
	Decrypt(ctx context.Context, req *kmspb.DecryptRequest) (*kmspb.DecryptResponse, error)
}

// Option configures New.
type Option func(*options)

type options struct {
	encryptedKey *encryptedKeyEntry
	keyLength    int
	err          error
}

type encryptedKeyEntry struct {
	ciphertext   []byte
	resourceName string // projects/*/locations/*/keyRings/*/cryptoKeys/*
}

// WithEncryptedKey sets the wrapped key to unwrap via Cloud KMS Decrypt.
// The resourceName is the full Cloud KMS CryptoKey resource name.
// Setting it twice is an error.
func WithEncryptedKey(ciphertext []byte, resourceName string) Option {
	return func(o *options) {
		if o.encryptedKey != nil {
			o.err = fmt.Errorf("gcpkms: encrypted key set twice")
			return
		}
		o.encryptedKey = &encryptedKeyEntry{
			ciphertext:   ciphertext,
			resourceName: resourceName,
		}
	}
}

// WithKeyLength sets the expected unwrapped key length. The default is 16.
func WithKeyLength(n int) Option {
	return func(o *options) {
		o.keyLength = n
	}
}

// New unwraps the key with Google Cloud KMS and returns a store holding it.
//
// Exactly one key must be provided via WithEncryptedKey.
// The store is read-only: Generate fails with cryptolight.ErrPersistence,
// since the key is owned by the KMS and a replacement would not survive a
// restart.
// The unwrapped bytes are zeroed once copied into the store, and the KMS
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
		return nil, fmt.Errorf("gcpkms: an encrypted key is required")
	}

	resp, err := client.Decrypt(ctx, &kmspb.DecryptRequest{
		Name:       ek.resourceName,
		Ciphertext: ek.ciphertext,
	})
	if err != nil {
		return nil, fmt.Errorf("gcpkms: failed to decrypt key with %s: %w", ek.resourceName, err)
	}
	defer clear(resp.Plaintext)

	store, err := cryptolight.NewStaticKeyStore(o.keyLength, cryptolight.WithKey(resp.Plaintext), cryptolight.WithReadOnly())
	if err != nil {
		return nil, fmt.Errorf("gcpkms: %w", err)
	}
	return store, nil
}
