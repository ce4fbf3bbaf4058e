package cryptolight

import (
	"crypto/subtle"
	"fmt"
)

// pad writes plaintext followed by its PKCS#7 padding into dst.
// dst must be exactly paddedLen(len(plaintext), blockSize) long.
func pad(dst, plaintext []byte) {
	n := copy(dst, plaintext)
	p := byte(len(dst) - n)
	for i := n; i < len(dst); i++ {
		dst[i] = p
	}
}

// paddedLen returns the PKCS#7 padded length of an n-byte plaintext.
func paddedLen(n, blockSize int) int {
	return (n/blockSize + 1) * blockSize
}

// unpad strips PKCS#7 padding from buf. The check inspects the whole final
// block regardless of the padding value, so its running time depends only on
// len(buf) and blockSize, never on the plaintext content.
func unpad(buf []byte, blockSize int) ([]byte, error) {
	n := len(buf)
	if n == 0 || n%blockSize != 0 {
		return nil, fmt.Errorf("%w: length %d is not a positive multiple of %d", ErrInvalidPadding, n, blockSize)
	}

	padLen := int(buf[n-1])
	good := subtle.ConstantTimeLessOrEq(1, padLen) & subtle.ConstantTimeLessOrEq(padLen, blockSize)

	for i := 0; i < blockSize; i++ {
		inPad := subtle.ConstantTimeLessOrEq(i+1, padLen)
		match := subtle.ConstantTimeByteEq(buf[n-1-i], byte(padLen))
		good &= subtle.ConstantTimeSelect(inPad, match, 1)
	}

	if good != 1 {
		return nil, ErrInvalidPadding
	}
	return buf[:n-padLen], nil
}
