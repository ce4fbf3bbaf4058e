// Package awskms loads a cryptolight key that is stored wrapped by AWS KMS.
//
// The wrapped key is unwrapped with KMS Decrypt once, at construction time,
// and held in a read-only cryptolight.StaticKeyStore.
//
// Usage:
//
//	cfg, err := awsconfig.LoadDefaultConfig(ctx)
//	kmsClient := kms.NewFromConfig(cfg)
//
//	store, err := awskms.New(ctx, kmsClient,
//	    awskms.WithEncryptedKey(encryptedKeyBytes),
//	)
//	svc, err := cryptolight.NewService(store, cipher)
package awskms

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/rbaliyan/cryptolight"
)

// DefaultKeyLength is the unwrapped key length expected unless WithKeyLength is given.
const DefaultKeyLength = 16

// Client is the subset of the AWS KMS API used by this package.
type Client interface {
	Decrypt(ctx context.Context, params *kms.DecryptInput, optFns ...func(*kms.Options)) (*kms.DecryptOutput, error)
}

// Option configures New.
type Option func(*options)

type options struct {
	encryptedKey []byte
	kmsKeyID     string // KMS key ARN or alias; empty = let KMS determine
	keyLength    int
	err          error
}

// WithEncryptedKey sets the wrapped key to unwrap via KMS Decrypt.
// The ciphertext should be the output of KMS Encrypt or GenerateDataKey.
// Setting it twice is an error.
func WithEncryptedKey(ciphertext []byte) Option {
	return func(o *options) {
		if o.encryptedKey != nil {
			o.err = fmt.Errorf("awskms: encrypted key set twice")
			return
		}
		o.encryptedKey = ciphertext
	}
}

// WithKMSKeyID names the KMS key ARN or alias used for decryption. Use this
// when the ciphertext was encrypted with a specific KMS key.
func WithKMSKeyID(kmsKeyID string) Option {
	return func(o *options) {
		o.kmsKeyID = kmsKeyID
	}
}

// WithKeyLength sets the expected unwrapped key length. The default is 16.
func WithKeyLength(n int) Option {
	return func(o *options) {
		o.keyLength = n
	}
}

// New unwraps the key with AWS KMS and returns a store holding it.
//
// Exactly one key must be provided via WithEncryptedKey: envelopes carry no
// key identifier, so there is nothing to select an older key by.
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
	if len(o.encryptedKey) == 0 {
		return nil, fmt.Errorf("awskms: an encrypted key is required")
	}

	input := &kms.DecryptInput{
		CiphertextBlob: o.encryptedKey,
	}
	if o.kmsKeyID != "" {
		input.KeyId = &o.kmsKeyID
	}

	out, err := client.Decrypt(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("awskms: failed to decrypt key: %w", err)
	}
	defer clear(out.Plaintext)

	store, err := cryptolight.NewStaticKeyStore(o.keyLength, cryptolight.WithKey(out.Plaintext), cryptolight.WithReadOnly())
	if err != nil {
		return nil, fmt.Errorf("awskms: %w", err)
	}
	return store, nil
}
