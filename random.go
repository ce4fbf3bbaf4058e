package cryptolight

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
)

// RandomSource fills buffers with cryptographically secure random bytes.
// Implementations must be safe for concurrent use.
type RandomSource interface {
	// Fill writes len(buf) random bytes into buf.
	// Returns ErrEntropyUnavailable if the underlying source cannot be read.
	Fill(buf []byte) error
}

// SystemRandom is a RandomSource backed by an io.Reader, by default the
// operating system's CSPRNG. Reads are serialized with a mutex so that a
// reader which is not itself goroutine-safe can be shared.
type SystemRandom struct {
	mu sync.Mutex
	r  io.Reader
}

// NewSystemRandom returns a SystemRandom reading from r.
// A nil r selects crypto/rand.Reader.
func NewSystemRandom(r io.Reader) *SystemRandom {
	if r == nil {
		r = rand.Reader
	}
	return &SystemRandom{r: r}
}

// DefaultRandom returns a new SystemRandom over crypto/rand.Reader.
// Each call returns a separately owned instance.
func DefaultRandom() *SystemRandom {
	return NewSystemRandom(nil)
}

// Fill writes len(buf) random bytes into buf.
func (s *SystemRandom) Fill(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := io.ReadFull(s.r, buf); err != nil {
		clear(buf)
		return fmt.Errorf("%w: %v", ErrEntropyUnavailable, err)
	}
	return nil
}

// Compile-time interface check.
var _ RandomSource = (*SystemRandom)(nil)
