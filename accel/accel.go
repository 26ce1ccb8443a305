// Package accel provides a bulk accelerator for CFB mode.
//
// CFB encryption is inherently serial: every block's keystream depends on the previous block's ciphertext. Decryption
// is not, since the ciphertext is known up front, so Pipelined computes the keystream for a run of blocks before XORing
// the whole run at once. On amd64 and arm64 processors with wide SIMD registers the single long XOR is considerably
// cheaper than one XOR per block; elsewhere the scalar path is as fast.
package accel

import (
	"github.com/codahale/cfb"
	"github.com/codahale/cfb/internal/mem"
)

// chunkSize is the size of the keystream scratch buffer, in bytes. Block sizes larger than this are processed serially.
const chunkSize = 512

// Pipelined is a cfb.Accelerator which batches keystream generation and XORs for runs of whole blocks. Its output is
// identical to the scalar path for any block size.
type Pipelined struct{}

// EncryptBlocks implements cfb.Accelerator.
func (Pipelined) EncryptBlocks(b cfb.Block, iv, dst, src []byte) {
	bs := len(iv)
	for len(src) >= bs {
		b.Encrypt(iv, iv)
		mem.XOR(iv, iv, src[:bs])
		copy(dst[:bs], iv)
		dst, src = dst[bs:], src[bs:]
	}
}

// DecryptBlocks implements cfb.Accelerator.
func (Pipelined) DecryptBlocks(b cfb.Block, iv, dst, src []byte) {
	bs := len(iv)
	if bs > chunkSize {
		decryptSerial(b, iv, dst, src)
		return
	}

	var scratch [chunkSize]byte
	maxRun := chunkSize / bs * bs
	for len(src) >= bs {
		n := min(len(src)/bs*bs, maxRun)
		ks := scratch[:n]

		// The first block's keystream comes from the register, the rest from the preceding ciphertext blocks.
		b.Encrypt(ks[:bs], iv)
		for i := bs; i < n; i += bs {
			b.Encrypt(ks[i:i+bs], src[i-bs:i])
		}

		// Capture the last ciphertext block before dst, which may alias src, is overwritten.
		copy(iv, src[n-bs:n])
		mem.XOR(dst[:n], ks, src[:n])
		dst, src = dst[n:], src[n:]
	}
	clear(scratch[:])
}

func decryptSerial(b cfb.Block, iv, dst, src []byte) {
	bs := len(iv)
	for len(src) >= bs {
		b.Encrypt(iv, iv)
		for i := range bs {
			c := src[i]
			dst[i] = iv[i] ^ c
			iv[i] = c
		}
		dst, src = dst[bs:], src[bs:]
	}
}

// Detect returns Pipelined if the current CPU has SIMD support which makes it worthwhile, and nil otherwise.
func Detect() cfb.Accelerator {
	if UseSIMD {
		return Pipelined{}
	}
	return nil
}

var _ cfb.Accelerator = Pipelined{}
