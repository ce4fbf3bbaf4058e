package cryptolight

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"strings"

	"github.com/aead/serpent"
	"github.com/deatil/go-cryptobin/cipher/speck"
	present "github.com/yi-jiayu/PRESENT.go"
)

// Primitive is a fixed-block-size, fixed-key-length block cipher.
// The permutation itself is supplied by a library; Primitive only describes
// its sizes and constructs a keyed cipher.Block.
type Primitive interface {
	// Name returns the registry name, e.g. "speck128".
	Name() string

	// KeySize returns the required key length in bytes.
	KeySize() int

	// BlockSize returns the block length in bytes.
	BlockSize() int

	// NewBlock returns the keyed permutation.
	NewBlock(key []byte) (cipher.Block, error)
}

// Speck128 is SPECK with a 128-bit block and a 128-bit key.
var Speck128 Primitive = speckPrimitive{}

// Present128 is PRESENT with a 64-bit block and a 128-bit key.
var Present128 Primitive = presentPrimitive{}

// AES128 is AES with a 128-bit key.
var AES128 Primitive = aesPrimitive{}

// Serpent128 is Serpent with a 128-bit key.
var Serpent128 Primitive = serpentPrimitive{}

func checkKeySize(p Primitive, key []byte) error {
	if len(key) != p.KeySize() {
		return fmt.Errorf("%w: %s needs %d bytes, got %d", ErrInvalidKeyLength, p.Name(), p.KeySize(), len(key))
	}
	return nil
}

type speckPrimitive struct{}

func (speckPrimitive) Name() string   { return "speck128" }
func (speckPrimitive) KeySize() int   { return 16 }
func (speckPrimitive) BlockSize() int { return speck.BlockSize }

func (p speckPrimitive) NewBlock(key []byte) (cipher.Block, error) {
	if err := checkKeySize(p, key); err != nil {
		return nil, err
	}
	return speck.NewCipher(key)
}

type presentPrimitive struct{}

func (presentPrimitive) Name() string   { return "present128" }
func (presentPrimitive) KeySize() int   { return 16 }
func (presentPrimitive) BlockSize() int { return present.BlockSize }

func (p presentPrimitive) NewBlock(key []byte) (cipher.Block, error) {
	if err := checkKeySize(p, key); err != nil {
		return nil, err
	}
	return present.NewCipher(key)
}

type aesPrimitive struct{}

func (aesPrimitive) Name() string   { return "aes128" }
func (aesPrimitive) KeySize() int   { return 16 }
func (aesPrimitive) BlockSize() int { return aes.BlockSize }

func (p aesPrimitive) NewBlock(key []byte) (cipher.Block, error) {
	if err := checkKeySize(p, key); err != nil {
		return nil, err
	}
	return aes.NewCipher(key)
}

type serpentPrimitive struct{}

func (serpentPrimitive) Name() string   { return "serpent128" }
func (serpentPrimitive) KeySize() int   { return 16 }
func (serpentPrimitive) BlockSize() int { return serpent.BlockSize }

func (p serpentPrimitive) NewBlock(key []byte) (cipher.Block, error) {
	if err := checkKeySize(p, key); err != nil {
		return nil, err
	}
	return serpent.NewCipher(key)
}

var primitives = map[string]Primitive{
	Speck128.Name():   Speck128,
	Present128.Name(): Present128,
	AES128.Name():     AES128,
	Serpent128.Name(): Serpent128,
}

// PrimitiveByName returns the primitive registered under name.
// Matching is case-insensitive, and a family name without its key size
// ("speck", "present", "aes", "serpent") selects the 128-bit variant.
func PrimitiveByName(name string) (Primitive, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if _, ok := primitives[n+"128"]; ok {
		n += "128"
	}
	p, ok := primitives[n]
	if !ok {
		return nil, fmt.Errorf("cryptolight: unknown primitive %q", name)
	}
	return p, nil
}

// PrimitiveNames returns the registered primitive names.
func PrimitiveNames() []string {
	return []string{Speck128.Name(), Present128.Name(), AES128.Name(), Serpent128.Name()}
}
