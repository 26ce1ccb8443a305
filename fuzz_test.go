package cfb_test

import (
	"bytes"
	"crypto/sha3"
	"testing"

	"github.com/codahale/cfb"
	"github.com/codahale/cfb/accel"
	fuzz "github.com/trailofbits/go-fuzz-utils"
)

// FuzzSplit encrypts and decrypts a message in randomly-sized pieces, with and without an accelerator, and checks that
// every combination agrees with a single scalar call.
//
//nolint:gocognit // It's fine if this is complicated.
func FuzzSplit(f *testing.F) {
	drbg := sha3.NewSHAKE128()
	_, _ = drbg.Write([]byte("cfb split"))

	for range 10 {
		seed := make([]byte, 1024)
		_, _ = drbg.Read(seed)
		f.Add(seed)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		tp, err := fuzz.NewTypeProvider(data)
		if err != nil {
			t.Skip(err)
		}

		bsRaw, err := tp.GetByte()
		if err != nil {
			t.Skip(err)
		}
		bs := int(bsRaw%32) + 1

		iv, err := tp.GetBytes()
		if err != nil || len(iv) < bs {
			t.Skip(err)
		}
		iv = iv[:bs]

		message, err := tp.GetBytes()
		if err != nil {
			t.Skip(err)
		}

		want := cfb.NewWithAccelerator(permBlock(bs), iv, nil).AppendEncrypt(nil, message)

		enc := cfb.NewWithAccelerator(permBlock(bs), iv, accel.Pipelined{})
		dec := cfb.NewWithAccelerator(permBlock(bs), iv, accel.Pipelined{})
		var ciphertext, plaintext []byte
		rest := message
		for len(rest) > 0 {
			size := len(rest)
			if n, err := tp.GetUint16(); err == nil {
				size = min(int(n)%(4*bs+1), len(rest))
			}
			piece := rest[:size]
			c := enc.AppendEncrypt(nil, piece)
			ciphertext = append(ciphertext, c...)
			plaintext = dec.AppendDecrypt(plaintext, c)
			rest = rest[len(piece):]
		}

		if !bytes.Equal(ciphertext, want) {
			t.Fatalf("split Encrypt = %x, want = %x", ciphertext, want)
		}

		if !bytes.Equal(plaintext, message) {
			t.Fatalf("split Decrypt = %x, want = %x", plaintext, message)
		}
	})
}
