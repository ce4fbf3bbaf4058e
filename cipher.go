// Package cryptolight seals data in IV || ciphertext envelopes using a
// lightweight block cipher in CBC mode with PKCS#7 padding.
package cryptolight

import "fmt"

// Cipher is the CBC envelope codec. Encrypt produces IV || ciphertext with a
// fresh random IV and PKCS#7 padding; Decrypt inverts it.
//
// Cipher holds no per-call mutable state. It is safe for concurrent use if its
// RandomSource is, which SystemRandom guarantees.
type Cipher struct {
	prim   Primitive
	random RandomSource
}

// CipherOption configures a Cipher.
type CipherOption func(*Cipher)

// WithRandom sets the source of IV material. The default is DefaultRandom().
func WithRandom(r RandomSource) CipherOption {
	return func(c *Cipher) {
		if r != nil {
			c.random = r
		}
	}
}

// NewCipher creates a CBC envelope codec over the given primitive.
// Returns an error if p is nil or its block size cannot be PKCS#7 padded.
func NewCipher(p Primitive, opts ...CipherOption) (*Cipher, error) {
	if p == nil {
		return nil, fmt.Errorf("cryptolight: NewCipher primitive is nil")
	}
	if bs := p.BlockSize(); bs < 1 || bs > maxBlockSize {
		return nil, fmt.Errorf("cryptolight: block size %d of %s is outside 1..%d", bs, p.Name(), maxBlockSize)
	}

	c := &Cipher{prim: p}
	for _, opt := range opts {
		opt(c)
	}
	if c.random == nil {
		c.random = DefaultRandom()
	}
	return c, nil
}

// Primitive returns the block cipher primitive.
func (c *Cipher) Primitive() Primitive {
	return c.prim
}

// BlockSize returns the primitive's block size in bytes.
func (c *Cipher) BlockSize() int {
	return c.prim.BlockSize()
}

// KeySize returns the primitive's key size in bytes.
func (c *Cipher) KeySize() int {
	return c.prim.KeySize()
}

// EnvelopeSize returns the length of the envelope Encrypt produces for an
// n-byte plaintext: one IV block plus the padded ciphertext.
func (c *Cipher) EnvelopeSize(n int) int {
	return envelopeSize(n, c.prim.BlockSize())
}

func (c *Cipher) checkKey(key Key) error {
	if len(key) != c.prim.KeySize() {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrInvalidKeyLength, c.prim.Name(), c.prim.KeySize(), len(key))
	}
	return nil
}
