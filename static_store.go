package cryptolight

import (
	"fmt"
	"sync"

	"github.com/awnumar/memguard"
)

// StaticKeyStore is a KeyStore backed by memory. The key is kept encrypted in
// a memguard enclave and only decrypted into a locked buffer while it is
// being copied out. Nothing is persisted.
// It is safe for concurrent use.
type StaticKeyStore struct {
	mu        sync.RWMutex
	keySize   int
	random    RandomSource
	key       *memguard.Enclave
	destroyed bool
	readOnly  bool
	err       error // deferred validation error from options
}

// StaticOption configures a StaticKeyStore.
type StaticOption func(*StaticKeyStore)

// WithKey seeds the store with existing key material.
// The bytes are copied; the caller's slice is left untouched.
func WithKey(keyBytes []byte) StaticOption {
	return func(s *StaticKeyStore) {
		if s.err != nil {
			return
		}
		if len(keyBytes) != s.keySize {
			s.err = fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKeyLength, s.keySize, len(keyBytes))
			return
		}
		b := make([]byte, len(keyBytes))
		copy(b, keyBytes)
		s.key = memguard.NewEnclave(b)
	}
}

// WithStaticRandom sets the source used by Generate.
func WithStaticRandom(r RandomSource) StaticOption {
	return func(s *StaticKeyStore) {
		if r != nil {
			s.random = r
		}
	}
}

// WithReadOnly makes Generate fail with ErrPersistence. Use it when the key
// is owned elsewhere, such as a KMS-wrapped key: a key generated here would
// be lost on restart together with everything sealed under it.
func WithReadOnly() StaticOption {
	return func(s *StaticKeyStore) {
		s.readOnly = true
	}
}

// NewStaticKeyStore creates an in-memory store for keys of keySize bytes.
// Without WithKey the store starts empty and Load returns ErrKeyNotFound
// until Generate is called.
func NewStaticKeyStore(keySize int, opts ...StaticOption) (*StaticKeyStore, error) {
	if keySize <= 0 {
		return nil, fmt.Errorf("%w: key size must be positive, got %d", ErrInvalidKeyLength, keySize)
	}

	s := &StaticKeyStore{keySize: keySize}
	for _, opt := range opts {
		opt(s)
	}
	if s.err != nil {
		return nil, s.err
	}
	if s.random == nil {
		s.random = DefaultRandom()
	}
	return s, nil
}

// KeySize returns the key length in bytes.
func (s *StaticKeyStore) KeySize() int {
	return s.keySize
}

// Load returns a copy of the current key.
func (s *StaticKeyStore) Load() (Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.destroyed {
		return nil, ErrStoreDestroyed
	}
	if s.key == nil {
		return nil, ErrKeyNotFound
	}
	return openEnclave(s.key)
}

// Generate replaces the current key with fresh random bytes.
// A read-only store returns ErrPersistence and keeps its key.
func (s *StaticKeyStore) Generate() (Key, error) {
	if s.readOnly {
		return nil, fmt.Errorf("%w: key store is read-only", ErrPersistence)
	}

	b := make([]byte, s.keySize)
	if err := s.random.Fill(b); err != nil {
		return nil, err
	}
	out := Key(b).Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.destroyed {
		memguard.WipeBytes(b)
		memguard.WipeBytes(out)
		return nil, ErrStoreDestroyed
	}
	s.key = memguard.NewEnclave(b)
	return out, nil
}

// Destroy drops the key. Subsequent calls return ErrStoreDestroyed.
// Destroy is idempotent.
func (s *StaticKeyStore) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = nil
	s.destroyed = true
}

// openEnclave decrypts an enclave and returns a heap copy of its contents.
func openEnclave(e *memguard.Enclave) (Key, error) {
	buf, err := e.Open()
	if err != nil {
		return nil, fmt.Errorf("cryptolight: failed to open key enclave: %w", err)
	}
	defer buf.Destroy()
	return Key(buf.Bytes()).Clone(), nil
}

// Compile-time interface check.
var _ KeyStore = (*StaticKeyStore)(nil)
