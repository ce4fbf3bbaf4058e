package cryptolight

import "fmt"

// Envelope layout:
//
//	+--------------------+-------------------------------+
//	| IV (1 block)       | ciphertext (N blocks, N >= 1) |
//	+--------------------+-------------------------------+
//
// There is no magic, version or algorithm byte. Both parties must agree on
// the primitive out of band.

// maxBlockSize is the largest block size PKCS#7 can express.
const maxBlockSize = 255

// envelopeSize returns the envelope length for an n-byte plaintext.
func envelopeSize(n, blockSize int) int {
	return blockSize + paddedLen(n, blockSize)
}

// splitEnvelope validates the envelope length and returns its IV and
// ciphertext regions. The returned slices alias data.
func splitEnvelope(data []byte, blockSize int) (iv, ciphertext []byte, err error) {
	if len(data) < blockSize {
		return nil, nil, fmt.Errorf("%w: %d bytes is shorter than one block", ErrMalformedEnvelope, len(data))
	}
	if (len(data)-blockSize)%blockSize != 0 {
		return nil, nil, fmt.Errorf("%w: %d bytes is not IV plus whole blocks", ErrMalformedEnvelope, len(data))
	}
	return data[:blockSize], data[blockSize:], nil
}
