package cryptolight

import (
	"crypto/cipher"
	"fmt"
)

// Encrypt pads plaintext, chains it in CBC mode under key with a fresh IV,
// and returns the envelope IV || ciphertext.
func (c *Cipher) Encrypt(key Key, plaintext []byte) ([]byte, error) {
	if err := c.checkKey(key); err != nil {
		return nil, err
	}

	block, err := c.prim.NewBlock(key)
	if err != nil {
		return nil, fmt.Errorf("cryptolight: failed to create %s cipher: %w", c.prim.Name(), err)
	}

	bs := c.prim.BlockSize()
	out := make([]byte, envelopeSize(len(plaintext), bs))
	iv, body := out[:bs], out[bs:]

	if err := c.random.Fill(iv); err != nil {
		return nil, fmt.Errorf("cryptolight: failed to generate IV: %w", err)
	}

	// Padding and chaining happen in place over the body region.
	pad(body, plaintext)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(body, body)

	return out, nil
}
