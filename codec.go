package cryptolight

import (
	"fmt"

	"github.com/rbaliyan/config/codec"
)

// Codec wraps an inner config codec with CBC envelope encryption.
// On Encode, the inner codec serializes the value, then the result is sealed.
// On Decode, the envelope is opened, then the inner codec deserializes the plaintext.
//
// Codec is safe for concurrent use if the KeyLoader and inner codec are.
// FileKeyStore and StaticKeyStore satisfy this requirement.
type Codec struct {
	inner  codec.Codec
	keys   KeyLoader
	cipher *Cipher
	name   string
}

// Compile-time interface check.
var _ codec.Codec = (*Codec)(nil)

// NewCodec creates an encrypting codec that wraps the given inner codec.
// The codec name is "cbc:<inner>", e.g. "cbc:json".
func NewCodec(inner codec.Codec, keys KeyLoader, c *Cipher) (*Codec, error) {
	if inner == nil {
		return nil, fmt.Errorf("cryptolight: NewCodec inner codec is nil")
	}
	if keys == nil {
		return nil, fmt.Errorf("cryptolight: NewCodec key loader is nil")
	}
	if c == nil {
		return nil, fmt.Errorf("cryptolight: NewCodec cipher is nil")
	}
	return &Codec{
		inner:  inner,
		keys:   keys,
		cipher: c,
		name:   "cbc:" + inner.Name(),
	}, nil
}

// Name returns the codec name, e.g. "cbc:json".
func (c *Codec) Name() string {
	return c.name
}

// Encode serializes the value using the inner codec, then seals the result.
func (c *Codec) Encode(v any) ([]byte, error) {
	plaintext, err := c.inner.Encode(v)
	if err != nil {
		return nil, fmt.Errorf("cryptolight: inner encode failed: %w", err)
	}

	key, err := c.keys.Load()
	if err != nil {
		return nil, fmt.Errorf("cryptolight: failed to load key: %w", err)
	}
	defer clear(key)

	return c.cipher.Encrypt(key, plaintext)
}

// Decode opens the envelope, then deserializes the plaintext using the inner codec.
// Malformed envelopes and bad padding both surface as ErrDecryptionFailed.
func (c *Codec) Decode(data []byte, v any) error {
	key, err := c.keys.Load()
	if err != nil {
		return fmt.Errorf("cryptolight: failed to load key: %w", err)
	}
	defer clear(key)

	plaintext, err := c.cipher.Decrypt(key, data)
	if err != nil {
		if isDecryptionKind(err) {
			return ErrDecryptionFailed
		}
		return fmt.Errorf("cryptolight: decrypt failed: %w", err)
	}

	if err := c.inner.Decode(plaintext, v); err != nil {
		return fmt.Errorf("cryptolight: inner decode failed: %w", err)
	}
	return nil
}
