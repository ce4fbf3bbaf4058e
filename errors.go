package cryptolight

import "errors"

var (
	// ErrEntropyUnavailable is returned when the random source cannot be read.
	ErrEntropyUnavailable = errors.New("cryptolight: entropy unavailable")

	// ErrPersistence is returned when the key location cannot be read or written.
	ErrPersistence = errors.New("cryptolight: key persistence failed")

	// ErrKeyNotFound is returned when no key has been generated yet.
	ErrKeyNotFound = errors.New("cryptolight: key not found")

	// ErrCorruptKey is returned when a stored key does not have the expected length.
	ErrCorruptKey = errors.New("cryptolight: corrupt key")

	// ErrInvalidKeyLength is returned when a key does not match the primitive's key size.
	ErrInvalidKeyLength = errors.New("cryptolight: invalid key length")

	// ErrMalformedEnvelope is returned when an envelope is not IV plus whole blocks.
	ErrMalformedEnvelope = errors.New("cryptolight: malformed envelope")

	// ErrInvalidPadding is returned when the decrypted padding bytes are not valid PKCS#7.
	ErrInvalidPadding = errors.New("cryptolight: invalid padding")

	// ErrDecryptionFailed is the only decryption error reported across the
	// Service and Codec boundary. It carries no detail.
	ErrDecryptionFailed = errors.New("cryptolight: decryption failed")

	// ErrStoreDestroyed is returned by a StaticKeyStore after Destroy.
	ErrStoreDestroyed = errors.New("cryptolight: key store destroyed")
)

// IsEntropyUnavailable returns true if the error is or wraps ErrEntropyUnavailable.
func IsEntropyUnavailable(err error) bool {
	return errors.Is(err, ErrEntropyUnavailable)
}

// IsPersistence returns true if the error is or wraps ErrPersistence.
func IsPersistence(err error) bool {
	return errors.Is(err, ErrPersistence)
}

// IsKeyNotFound returns true if the error is or wraps ErrKeyNotFound.
func IsKeyNotFound(err error) bool {
	return errors.Is(err, ErrKeyNotFound)
}

// IsCorruptKey returns true if the error is or wraps ErrCorruptKey.
func IsCorruptKey(err error) bool {
	return errors.Is(err, ErrCorruptKey)
}

// IsInvalidKeyLength returns true if the error is or wraps ErrInvalidKeyLength.
func IsInvalidKeyLength(err error) bool {
	return errors.Is(err, ErrInvalidKeyLength)
}

// IsMalformedEnvelope returns true if the error is or wraps ErrMalformedEnvelope.
func IsMalformedEnvelope(err error) bool {
	return errors.Is(err, ErrMalformedEnvelope)
}

// IsInvalidPadding returns true if the error is or wraps ErrInvalidPadding.
func IsInvalidPadding(err error) bool {
	return errors.Is(err, ErrInvalidPadding)
}

// IsDecryptionFailed returns true if the error is or wraps ErrDecryptionFailed.
func IsDecryptionFailed(err error) bool {
	return errors.Is(err, ErrDecryptionFailed)
}

// IsStoreDestroyed returns true if the error is or wraps ErrStoreDestroyed.
func IsStoreDestroyed(err error) bool {
	return errors.Is(err, ErrStoreDestroyed)
}

// isDecryptionKind reports whether err is one of the kinds that must be
// collapsed into ErrDecryptionFailed before leaving the trust boundary.
func isDecryptionKind(err error) bool {
	return IsMalformedEnvelope(err) || IsInvalidPadding(err)
}
