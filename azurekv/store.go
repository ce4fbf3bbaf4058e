// Package azurekv loads a cryptolight key that is stored wrapped by an Azure
// Key Vault key.
//
// The wrapped key is unwrapped with the UnwrapKey operation once, at
// construction time, and held in a read-only cryptolight.StaticKeyStore.
//
// Usage:
//
//	cred, err := azidentity.NewDefaultAzureCredential(nil)
//	client, err := azkeys.NewClient("https://my-vault.vault.azure.net/", cred, nil)
//
//	store, err := azurekv.New(ctx, client,
//	    azurekv.WithWrappedKey(wrappedKeyBytes, "my-key-name", "key-version"),
//	)
package azurekv

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azkeys"
	"github.com/rbaliyan/cryptolight"
)

// DefaultKeyLength is the unwrapped key length expected unless WithKeyLength is given.
const DefaultKeyLength = 16

// Client is the subset of the Azure Key Vault API used by this package.
type Client interface {
	UnwrapKey(ctx context.Context, keyName string, keyVersion string, parameters azkeys.KeyOperationParameters, options *azkeys.UnwrapKeyOptions) (azkeys.UnwrapKeyResponse, error)
}

// Option configures New.
type Option func(*options)

type options struct {
	wrappedKey *wrappedKeyEntry
	keyLength  int
	err        error
}

type wrappedKeyEntry struct {
	ciphertext []byte
	keyName    string
	keyVersion string
	algorithm  azkeys.EncryptionAlgorithm
}

// WithWrappedKey sets the wrapped key to unwrap via Key Vault.
// The keyName and keyVersion identify the Key Vault key used for wrapping.
// Uses RSA-OAEP-256.
func WithWrappedKey(ciphertext []byte, keyName, keyVersion string) Option {
	return WithWrappedKeyAlgorithm(ciphertext, keyName, keyVersion, azkeys.EncryptionAlgorithmRSAOAEP256)
}

// WithWrappedKeyAlgorithm is like WithWrappedKey but allows specifying the unwrap algorithm.
// Setting a wrapped key twice is an error.
func WithWrappedKeyAlgorithm(ciphertext []byte, keyName, keyVersion string, alg azkeys.EncryptionAlgorithm) Option {
	return func(o *options) {
		if o.wrappedKey != nil {
			o.err = fmt.Errorf("azurekv: wrapped key set twice")
			return
		}
		o.wrappedKey = &wrappedKeyEntry{
			ciphertext: ciphertext,
			keyName:    keyName,
			keyVersion: keyVersion,
			algorithm:  alg,
		}
	}
}

// WithKeyLength sets the expected unwrapped key length. The default is 16.
func WithKeyLength(n int) Option {
	return func(o *options) {
		o.keyLength = n
	}
}

// New unwraps the key with Azure Key Vault and returns a store holding it.
//
// Exactly one key must be provided via WithWrappedKey.
// The store is read-only: Generate fails with cryptolight.ErrPersistence,
// since the key is owned by Key Vault and a replacement would not survive a
// restart.
// The unwrapped bytes are zeroed once copied into the store, and the Key
// Vault client is not retained.
func New(ctx context.Context, client Client, opts ...Option) (*cryptolight.StaticKeyStore, error) {
	o := options{keyLength: DefaultKeyLength}
	for _, opt := range opts {
		opt(&o)
	}

	if o.err != nil {
		return nil, o.err
	}
	wk := o.wrappedKey
	if wk == nil {
		return nil, fmt.Errorf("azurekv: a wrapped key is required")
	}

	resp, err := client.UnwrapKey(ctx, wk.keyName, wk.keyVersion, azkeys.KeyOperationParameters{
		Algorithm: &wk.algorithm,
		Value:     wk.ciphertext,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("azurekv: failed to unwrap key with %s/%s: %w", wk.keyName, wk.keyVersion, err)
	}
	defer clear(resp.Result)

	store, err := cryptolight.NewStaticKeyStore(o.keyLength, cryptolight.WithKey(resp.Result), cryptolight.WithReadOnly())
	if err != nil {
		return nil, fmt.Errorf("azurekv: %w", err)
	}
	return store, nil
}
