package cryptolight

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/awnumar/memguard"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Service is the boundary exposed to callers: generate a key, encrypt and
// decrypt. The key never leaves the Service; it is loaded from the KeyStore
// on first use and cached in a memguard enclave.
//
// Decrypt reports every envelope-dependent failure as ErrDecryptionFailed,
// so malformed envelopes and bad padding cannot be told apart by callers.
//
// Service is safe for concurrent use.
type Service struct {
	cipher *Cipher
	store  KeyStore
	logger *slog.Logger
	tel    *telemetry

	mu  sync.RWMutex
	key *memguard.Enclave
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
	meterProvider  metric.MeterProvider
}

// WithLogger sets the logger. Key material is never logged.
// The default discards all output.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = l
	}
}

// WithTracerProvider sets the tracer provider. The default is the global one.
func WithTracerProvider(tp trace.TracerProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.tracerProvider = tp
	}
}

// WithMeterProvider sets the meter provider. The default is the global one.
func WithMeterProvider(mp metric.MeterProvider) ServiceOption {
	return func(o *serviceOptions) {
		o.meterProvider = mp
	}
}

// NewService creates a Service over store and c.
// The store's key size must match the cipher's primitive.
func NewService(store KeyStore, c *Cipher, opts ...ServiceOption) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cryptolight: NewService store is nil")
	}
	if c == nil {
		return nil, fmt.Errorf("cryptolight: NewService cipher is nil")
	}
	if store.KeySize() != c.KeySize() {
		return nil, fmt.Errorf("%w: store holds %d-byte keys, %s needs %d",
			ErrInvalidKeyLength, store.KeySize(), c.Primitive().Name(), c.KeySize())
	}

	var o serviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	tel, err := newTelemetry(o.tracerProvider, o.meterProvider)
	if err != nil {
		return nil, fmt.Errorf("cryptolight: failed to create instruments: %w", err)
	}

	return &Service{
		cipher: c,
		store:  store,
		logger: o.logger,
		tel:    tel,
	}, nil
}

// GenerateKey creates a new key in the store, replacing any previous key.
// Envelopes produced under the previous key can no longer be decrypted.
func (s *Service) GenerateKey(ctx context.Context) (err error) {
	ctx, span := s.tel.start(ctx, "generate_key", s.cipher.Primitive())
	defer func() { s.tel.end(ctx, span, "generate_key", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.store.Generate()
	if err != nil {
		s.logger.ErrorContext(ctx, "key generation failed", slog.String("error", err.Error()))
		return err
	}
	s.key = memguard.NewEnclave(key)

	s.logger.InfoContext(ctx, "key generated",
		slog.String("primitive", s.cipher.Primitive().Name()),
		slog.Int("key_size", s.cipher.KeySize()),
	)
	return nil
}

// Encrypt returns the envelope for plaintext under the current key.
func (s *Service) Encrypt(ctx context.Context, plaintext []byte) (envelope []byte, err error) {
	ctx, span := s.tel.start(ctx, "encrypt", s.cipher.Primitive())
	defer func() { s.tel.end(ctx, span, "encrypt", err) }()

	err = s.withKey(func(key Key) error {
		var encErr error
		envelope, encErr = s.cipher.Encrypt(key, plaintext)
		return encErr
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "encrypt failed", slog.String("error", err.Error()))
		return nil, err
	}

	s.tel.recordSize(ctx, "encrypt", len(envelope))
	s.logger.DebugContext(ctx, "encrypted", slog.Int("envelope_size", len(envelope)))
	return envelope, nil
}

// Decrypt returns the plaintext sealed in envelope.
// Any failure caused by the envelope's content is returned as a bare
// ErrDecryptionFailed; the specific kind is only logged at debug level.
func (s *Service) Decrypt(ctx context.Context, envelope []byte) ([]byte, error) {
	// diag keeps the internal error kind for the span after the caller's
	// error has been collapsed.
	var diag error
	ctx, span := s.tel.start(ctx, "decrypt", s.cipher.Primitive())
	defer func() { s.tel.end(ctx, span, "decrypt", diag) }()

	s.tel.recordSize(ctx, "decrypt", len(envelope))

	var plaintext []byte
	diag = s.withKey(func(key Key) error {
		var decErr error
		plaintext, decErr = s.cipher.Decrypt(key, envelope)
		return decErr
	})
	if diag == nil {
		return plaintext, nil
	}

	if isDecryptionKind(diag) {
		s.logger.DebugContext(ctx, "envelope rejected", slog.String("kind", errorKind(diag)))
		return nil, ErrDecryptionFailed
	}

	s.logger.ErrorContext(ctx, "decrypt failed", slog.String("error", diag.Error()))
	return nil, diag
}

// Forget drops the cached key. The next operation reloads it from the store,
// which picks up a key regenerated by another process.
func (s *Service) Forget() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.key = nil
}

// withKey runs fn with the decrypted key. The key buffer is locked memory and
// is destroyed when fn returns.
func (s *Service) withKey(fn func(Key) error) error {
	enclave, err := s.enclave()
	if err != nil {
		return err
	}

	buf, err := enclave.Open()
	if err != nil {
		return fmt.Errorf("cryptolight: failed to open key enclave: %w", err)
	}
	defer buf.Destroy()

	return fn(Key(buf.Bytes()))
}

func (s *Service) enclave() (*memguard.Enclave, error) {
	s.mu.RLock()
	e := s.key
	s.mu.RUnlock()
	if e != nil {
		return e, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.key != nil {
		return s.key, nil
	}

	key, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	if len(key) != s.cipher.KeySize() {
		clear(key)
		return nil, fmt.Errorf("%w: loaded %d bytes, want %d", ErrInvalidKeyLength, len(key), s.cipher.KeySize())
	}
	s.key = memguard.NewEnclave(key)
	return s.key, nil
}
