package cryptolight

import (
	"bytes"
	"testing"
)

func FuzzDecrypt(f *testing.F) {
	c, err := NewCipher(Speck128)
	if err != nil {
		f.Fatal(err)
	}
	key := makeKey(16)

	for _, seed := range []string{"", "Hello World!", "exactly16bytes!!"} {
		env, err := c.Encrypt(key, []byte(seed))
		if err != nil {
			f.Fatal(err)
		}
		f.Add(env)
	}
	f.Add([]byte{})
	f.Add(make([]byte, 16))
	f.Add(make([]byte, 17))

	f.Fuzz(func(t *testing.T, data []byte) {
		in := bytes.Clone(data)
		got, err := c.Decrypt(key, data)
		if !bytes.Equal(in, data) {
			t.Fatal("Decrypt modified its input")
		}
		if err != nil {
			if !IsMalformedEnvelope(err) && !IsInvalidPadding(err) {
				t.Fatalf("unexpected error kind: %v", err)
			}
			return
		}
		if len(got) > len(data)-c.BlockSize()-1 {
			t.Fatalf("plaintext of %d bytes from %d-byte envelope", len(got), len(data))
		}
	})
}

func FuzzRoundTrip(f *testing.F) {
	c, err := NewCipher(Speck128)
	if err != nil {
		f.Fatal(err)
	}
	key := makeKey(16)

	f.Add([]byte(""))
	f.Add([]byte("Hello World!"))

	f.Fuzz(func(t *testing.T, plaintext []byte) {
		env, err := c.Encrypt(key, plaintext)
		if err != nil {
			t.Fatal(err)
		}
		if len(env) != c.EnvelopeSize(len(plaintext)) {
			t.Fatalf("envelope size %d, want %d", len(env), c.EnvelopeSize(len(plaintext)))
		}
		got, err := c.Decrypt(key, env)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, plaintext) {
			t.Fatal("round-trip mismatch")
		}
	})
}
