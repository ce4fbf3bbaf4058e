package azurekv

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azkeys"
	"github.com/rbaliyan/cryptolight"
)

type mockClient struct {
	keys    map[string][]byte // ciphertext -> plaintext
	failOn  string
	lastAlg azkeys.EncryptionAlgorithm
}

func (m *mockClient) UnwrapKey(ctx context.Context, keyName string, keyVersion string, parameters azkeys.KeyOperationParameters, options *azkeys.UnwrapKeyOptions) (azkeys.UnwrapKeyResponse, error) {
	if parameters.Algorithm != nil {
		m.lastAlg = *parameters.Algorithm
	}
	ct := string(parameters.Value)
	if ct == m.failOn {
		return azkeys.UnwrapKeyResponse{}, fmt.Errorf("forbidden")
	}
	plaintext, ok := m.keys[ct]
	if !ok {
		return azkeys.UnwrapKeyResponse{}, fmt.Errorf("invalid ciphertext")
	}
	return azkeys.UnwrapKeyResponse{
		KeyOperationResult: azkeys.KeyOperationResult{Result: plaintext},
	}, nil
}

func makeKey(size int) []byte {
	key := make([]byte, size)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNew(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{"wrapped-1": makeKey(16)},
	}

	store, err := New(context.Background(), client,
		WithWrappedKey([]byte("wrapped-1"), "my-key", "v1"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.lastAlg != azkeys.EncryptionAlgorithmRSAOAEP256 {
		t.Errorf("algorithm: got %q, want RSA-OAEP-256", client.lastAlg)
	}

	key, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !bytes.Equal(key, makeKey(16)) {
		t.Error("Load returned a different key")
	}
}

func TestNewWithAlgorithm(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{"wrapped-1": makeKey(16)},
	}

	_, err := New(context.Background(), client,
		WithWrappedKeyAlgorithm([]byte("wrapped-1"), "my-key", "v1", azkeys.EncryptionAlgorithmRSAOAEP),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if client.lastAlg != azkeys.EncryptionAlgorithmRSAOAEP {
		t.Errorf("algorithm: got %q, want RSA-OAEP", client.lastAlg)
	}
}

func TestNewNoKeys(t *testing.T) {
	_, err := New(context.Background(), &mockClient{})
	if err == nil {
		t.Error("expected error for no keys")
	}
}

func TestNewMultipleKeys(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{"a": makeKey(16), "b": makeKey(16)},
	}

	_, err := New(context.Background(), client,
		WithWrappedKey([]byte("a"), "k", "v1"),
		WithWrappedKey([]byte("b"), "k", "v2"),
	)
	if err == nil || !strings.Contains(err.Error(), "set twice") {
		t.Errorf("expected wrapped key set twice error, got %v", err)
	}
}

func TestNewUnwrapFailure(t *testing.T) {
	client := &mockClient{failOn: "wrapped-1"}

	_, err := New(context.Background(), client,
		WithWrappedKey([]byte("wrapped-1"), "my-key", "v1"),
	)
	if err == nil {
		t.Error("expected error for unwrap failure")
	}
}

func TestNewWrongKeyLength(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{"wrapped": makeKey(32)},
	}

	_, err := New(context.Background(), client,
		WithWrappedKey([]byte("wrapped"), "my-key", "v1"),
	)
	if !cryptolight.IsInvalidKeyLength(err) {
		t.Errorf("expected ErrInvalidKeyLength, got %v", err)
	}
}

func TestNewUnwrappedKeyZeroed(t *testing.T) {
	plaintext := makeKey(16)
	client := &mockClient{
		keys: map[string][]byte{"wrapped": plaintext},
	}

	_, err := New(context.Background(), client,
		WithWrappedKey([]byte("wrapped"), "my-key", "v1"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !bytes.Equal(plaintext, make([]byte, 16)) {
		t.Error("unwrapped key material was not zeroed after construction")
	}
}

func TestNewStoreIsReadOnly(t *testing.T) {
	client := &mockClient{
		keys: map[string][]byte{"wrapped-1": makeKey(16)},
	}

	store, err := New(context.Background(), client,
		WithWrappedKey([]byte("wrapped-1"), "my-key", "v1"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := store.Generate(); !cryptolight.IsPersistence(err) {
		t.Fatalf("Generate: expected ErrPersistence, got %v", err)
	}
	key, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(key, makeKey(16)) {
		t.Error("Generate replaced the Key Vault key")
	}
}
