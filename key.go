package cryptolight

// Key is raw symmetric key material. Its length is fixed by the Primitive.
// Key redacts itself when formatted so it never ends up in logs.
type Key []byte

// String implements fmt.Stringer without revealing key material.
func (k Key) String() string {
	return "cryptolight.Key[REDACTED]"
}

// GoString implements fmt.GoStringer without revealing key material.
func (k Key) GoString() string {
	return k.String()
}

// Clone returns a copy of k that does not share memory with it.
func (k Key) Clone() Key {
	if k == nil {
		return nil
	}
	b := make(Key, len(k))
	copy(b, k)
	return b
}

// KeyLoader returns the active key.
// Implementations must be safe for concurrent use.
type KeyLoader interface {
	// Load returns a copy of the active key that the caller owns.
	// Returns ErrKeyNotFound if no key has been generated yet.
	Load() (Key, error)
}

// KeyStore owns the lifecycle of a single symmetric key.
// Implementations must be safe for concurrent use.
type KeyStore interface {
	KeyLoader

	// Generate draws a fresh key, replaces any previous key and returns a copy.
	Generate() (Key, error)

	// KeySize returns the key length in bytes.
	KeySize() int
}
