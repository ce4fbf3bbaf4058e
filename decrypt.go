package cryptolight

import (
	"crypto/cipher"
	"fmt"
)

// Decrypt splits envelope into IV and ciphertext, inverts the CBC chain under
// key and strips the padding. The envelope is never modified.
//
// Returns ErrMalformedEnvelope if the length is not IV plus whole blocks and
// ErrInvalidPadding if the recovered padding is not valid. Callers outside the
// trust boundary must not see the difference; see Service.Decrypt.
func (c *Cipher) Decrypt(key Key, envelope []byte) ([]byte, error) {
	if err := c.checkKey(key); err != nil {
		return nil, err
	}

	bs := c.prim.BlockSize()
	iv, ciphertext, err := splitEnvelope(envelope, bs)
	if err != nil {
		return nil, err
	}

	block, err := c.prim.NewBlock(key)
	if err != nil {
		return nil, fmt.Errorf("cryptolight: failed to create %s cipher: %w", c.prim.Name(), err)
	}

	buf := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(buf, ciphertext)

	plaintext, err := unpad(buf, bs)
	if err != nil {
		clear(buf)
		return nil, err
	}
	return plaintext, nil
}
