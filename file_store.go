package cryptolight

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
)

// DefaultKeyFileName is the key file name used when only a directory is configured.
const DefaultKeyFileName = "key.bin"

// FileKeyStore persists a single key as a file containing exactly KeySize raw
// bytes, with no header or encoding.
//
// Generate replaces the file atomically (temp file, fsync, rename), so a
// reader never observes a partially written key. Within a process, Generate
// holds an exclusive lock and Load a shared one.
type FileKeyStore struct {
	mu       sync.RWMutex
	path     string
	keySize  int
	random   RandomSource
	fileMode fs.FileMode
	dirMode  fs.FileMode
}

// FileOption configures a FileKeyStore.
type FileOption func(*FileKeyStore)

// WithFileRandom sets the source used by Generate.
func WithFileRandom(r RandomSource) FileOption {
	return func(s *FileKeyStore) {
		if r != nil {
			s.random = r
		}
	}
}

// WithFileMode sets the permissions of the key file. The default is 0600.
func WithFileMode(mode fs.FileMode) FileOption {
	return func(s *FileKeyStore) {
		s.fileMode = mode
	}
}

// NewFileKeyStore creates a store for keys of keySize bytes at path.
// The file is not touched until Generate or Load is called.
func NewFileKeyStore(path string, keySize int, opts ...FileOption) (*FileKeyStore, error) {
	if path == "" {
		return nil, fmt.Errorf("cryptolight: NewFileKeyStore path is empty")
	}
	if keySize <= 0 {
		return nil, fmt.Errorf("%w: key size must be positive, got %d", ErrInvalidKeyLength, keySize)
	}

	s := &FileKeyStore{
		path:     filepath.Clean(path),
		keySize:  keySize,
		fileMode: 0o600,
		dirMode:  0o700,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.random == nil {
		s.random = DefaultRandom()
	}
	return s, nil
}

// Path returns the key file location.
func (s *FileKeyStore) Path() string {
	return s.path
}

// KeySize returns the key length in bytes.
func (s *FileKeyStore) KeySize() int {
	return s.keySize
}

// Generate draws a new key, overwrites the key file with it and returns a copy.
func (s *FileKeyStore) Generate() (Key, error) {
	key := make(Key, s.keySize)
	if err := s.random.Fill(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeFile(key); err != nil {
		clear(key)
		return nil, err
	}
	return key, nil
}

func (s *FileKeyStore) writeFile(key Key) (err error) {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, s.dirMode); err != nil {
		return fmt.Errorf("%w: create key directory: %v", ErrPersistence, err)
	}

	tmp, err := os.CreateTemp(dir, ".key-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp key file: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if err := tmp.Chmod(s.fileMode); err != nil {
		return fmt.Errorf("%w: chmod temp key file: %v", ErrPersistence, err)
	}
	if _, err := tmp.Write(key); err != nil {
		return fmt.Errorf("%w: write key: %v", ErrPersistence, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%w: sync key: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close key file: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("%w: replace key file: %v", ErrPersistence, err)
	}
	if err := syncDir(dir); err != nil {
		return fmt.Errorf("%w: sync key directory: %v", ErrPersistence, err)
	}
	return nil
}

// syncDir flushes a directory entry so a completed rename survives a crash.
// Windows cannot open directories for syncing; there it is a no-op.
func syncDir(dir string) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	if err := d.Sync(); err != nil {
		_ = d.Close()
		return err
	}
	return d.Close()
}

// Load reads the key file.
// Returns ErrKeyNotFound if it does not exist and ErrCorruptKey if it does
// not hold exactly KeySize bytes.
func (s *FileKeyStore) Load() (Key, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, s.path)
		}
		return nil, fmt.Errorf("%w: open key file: %v", ErrPersistence, err)
	}
	defer func() {
		_ = f.Close()
	}()

	// Read one byte past the key size so oversized files are detected
	// without reading them whole.
	buf, err := io.ReadAll(io.LimitReader(f, int64(s.keySize)+1))
	if err != nil {
		clear(buf)
		return nil, fmt.Errorf("%w: read key file: %v", ErrPersistence, err)
	}
	if len(buf) != s.keySize {
		clear(buf)
		return nil, fmt.Errorf("%w: %s holds %s, want %d bytes", ErrCorruptKey, s.path, sizeDesc(len(buf), s.keySize), s.keySize)
	}
	return Key(buf), nil
}

func sizeDesc(n, keySize int) string {
	if n > keySize {
		return fmt.Sprintf("more than %d bytes", keySize)
	}
	return fmt.Sprintf("%d bytes", n)
}

// Compile-time interface check.
var _ KeyStore = (*FileKeyStore)(nil)
