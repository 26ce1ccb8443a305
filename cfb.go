// Package cfb implements Cipher Feedback (CFB) mode over an arbitrary block cipher.
//
// A State turns any fixed-block-size primitive into a byte-oriented stream cipher. Input may be delivered across any
// number of calls in pieces of any length: unused keystream from a short call is retained and consumed by the next one,
// so splitting a message across calls never changes the output.
//
// When at least two whole blocks are available, the State hands them to an optional Accelerator in a single call. An
// Accelerator must produce output and register state identical to the scalar path; its presence only changes
// performance.
//
// CFB provides confidentiality but not authenticity. Callers which need integrity must add a MAC or use an AEAD.
package cfb

import (
	"encoding"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/codahale/cfb/internal/mem"
)

// MaxBlockSize is the largest block size, in bytes, a State supports.
const MaxBlockSize = 255

var (
	// ErrBufferTooShort is returned when the output buffer is smaller than the input. The State is left unmodified.
	ErrBufferTooShort = errors.New("cfb: output buffer too short")

	// ErrInvalidState is returned when restoring a State from a malformed binary representation.
	ErrInvalidState = errors.New("cfb: invalid state")
)

// A Block encrypts single blocks of a fixed size. Every crypto/cipher.Block is a Block.
type Block interface {
	// BlockSize returns the cipher's block size in bytes.
	BlockSize() int

	// Encrypt encrypts the first block in src into dst. Dst and src must overlap entirely or not at all.
	Encrypt(dst, src []byte)
}

// An Accelerator processes multiple whole blocks of CFB in a single call.
//
// Both methods are given a register of exactly b.BlockSize() bytes and dst and src slices whose length is a multiple of
// the block size. They must leave dst and iv exactly as the equivalent sequence of single-block operations would, must
// tolerate dst and src being the same slice, and must not retain any of the slices after returning.
type Accelerator interface {
	// EncryptBlocks encrypts len(src)/b.BlockSize() blocks, feeding each ciphertext block back into iv.
	EncryptBlocks(b Block, iv, dst, src []byte)

	// DecryptBlocks decrypts len(src)/b.BlockSize() blocks, feeding each ciphertext block back into iv.
	DecryptBlocks(b Block, iv, dst, src []byte)
}

// A State is the state of a CFB session: the feedback register, the register as it was before the most recent single
// block encryption, and the count of unused keystream bytes left at the tail of the register.
//
// A State must be used for either encryption or decryption, but not both. State instances are not concurrent-safe.
type State struct {
	b      Block
	accel  Accelerator
	iv     []byte
	lastIV []byte
	unused int
}

// New returns a State which uses b to encrypt the feedback register, starting with the given IV. If b implements
// Accelerator, it is used for multi-block runs.
//
// New panics if the block size is not in (0, MaxBlockSize] or if the IV is not exactly one block long.
func New(b Block, iv []byte) *State {
	a, _ := b.(Accelerator)
	return NewWithAccelerator(b, iv, a)
}

// NewWithAccelerator returns a State which uses b to encrypt the feedback register and a to process multi-block runs.
// If a is nil, all blocks are processed one at a time.
//
// NewWithAccelerator panics if the block size is not in (0, MaxBlockSize] or if the IV is not exactly one block long.
func NewWithAccelerator(b Block, iv []byte, a Accelerator) *State {
	bs := b.BlockSize()
	if bs <= 0 || bs > MaxBlockSize {
		panic("cfb: invalid block size")
	}

	if len(iv) != bs {
		panic("cfb: IV length must equal block size")
	}

	buf := make([]byte, 2*bs)
	s := &State{
		b:      b,
		accel:  a,
		iv:     buf[:bs:bs],
		lastIV: buf[bs:],
		unused: 0,
	}
	copy(s.iv, iv)
	return s
}

// BlockSize returns the size of the State's feedback register in bytes.
func (s *State) BlockSize() int {
	return len(s.iv)
}

// Unused returns the number of keystream bytes left over from a previous call.
func (s *State) Unused() int {
	return s.unused
}

// SavedRegister returns a copy of the feedback register as it was immediately before the most recent single-block or
// partial-block encryption. Runs handled by an Accelerator do not update it.
func (s *State) SavedRegister() []byte {
	return append([]byte(nil), s.lastIV...)
}

// Encrypt encrypts src into dst and feeds the ciphertext back into the register. Dst and src must overlap entirely or
// not at all.
//
// Multiple Encrypt calls are effectively the same thing as a single Encrypt call with concatenated inputs.
//
// If dst is shorter than src, Encrypt returns ErrBufferTooShort without writing anything or modifying the State.
func (s *State) Encrypt(dst, src []byte) error {
	if len(dst) < len(src) {
		return ErrBufferTooShort
	}
	dst = dst[:len(src)]
	if mem.InexactOverlap(dst, src) {
		panic("cfb: invalid buffer overlap")
	}

	bs := len(s.iv)

	// Use up any keystream left over from the last call.
	if s.unused > 0 {
		n := min(s.unused, len(src))
		k := s.iv[bs-s.unused : bs-s.unused+n]
		encryptBlock(dst[:n], k, src[:n])
		s.unused -= n
		dst, src = dst[n:], src[n:]
	}

	if len(src) >= 2*bs && s.accel != nil {
		n := len(src) / bs * bs
		s.accel.EncryptBlocks(s.b, s.iv, dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
	} else {
		for len(src) >= 2*bs {
			s.b.Encrypt(s.iv, s.iv)
			encryptBlock(dst[:bs], s.iv, src[:bs])
			dst, src = dst[bs:], src[bs:]
		}
	}

	if len(src) >= bs {
		copy(s.lastIV, s.iv)
		s.b.Encrypt(s.iv, s.iv)
		encryptBlock(dst[:bs], s.iv, src[:bs])
		dst, src = dst[bs:], src[bs:]
	}

	if len(src) > 0 {
		copy(s.lastIV, s.iv)
		s.b.Encrypt(s.iv, s.iv)
		s.unused = bs - len(src)
		encryptBlock(dst, s.iv[:len(src)], src)
	}

	return nil
}

// Decrypt decrypts src into dst and feeds the ciphertext back into the register. Dst and src must overlap entirely or
// not at all.
//
// Multiple Decrypt calls are effectively the same thing as a single Decrypt call with concatenated inputs.
//
// If dst is shorter than src, Decrypt returns ErrBufferTooShort without writing anything or modifying the State.
func (s *State) Decrypt(dst, src []byte) error {
	if len(dst) < len(src) {
		return ErrBufferTooShort
	}
	dst = dst[:len(src)]
	if mem.InexactOverlap(dst, src) {
		panic("cfb: invalid buffer overlap")
	}

	bs := len(s.iv)

	// Use up any keystream left over from the last call.
	if s.unused > 0 {
		n := min(s.unused, len(src))
		k := s.iv[bs-s.unused : bs-s.unused+n]
		decryptBlock(dst[:n], k, src[:n])
		s.unused -= n
		dst, src = dst[n:], src[n:]
	}

	if len(src) >= 2*bs && s.accel != nil {
		n := len(src) / bs * bs
		s.accel.DecryptBlocks(s.b, s.iv, dst[:n], src[:n])
		dst, src = dst[n:], src[n:]
	} else {
		for len(src) >= 2*bs {
			s.b.Encrypt(s.iv, s.iv)
			decryptBlock(dst[:bs], s.iv, src[:bs])
			dst, src = dst[bs:], src[bs:]
		}
	}

	if len(src) >= bs {
		copy(s.lastIV, s.iv)
		s.b.Encrypt(s.iv, s.iv)
		decryptBlock(dst[:bs], s.iv, src[:bs])
		dst, src = dst[bs:], src[bs:]
	}

	if len(src) > 0 {
		copy(s.lastIV, s.iv)
		s.b.Encrypt(s.iv, s.iv)
		s.unused = bs - len(src)
		decryptBlock(dst, s.iv[:len(src)], src)
	}

	return nil
}

// AppendEncrypt encrypts src and appends the ciphertext to dst, returning the resulting slice.
//
// To reuse src's storage for the encrypted output, use src[:0] as dst. Otherwise, the remaining capacity of dst must not
// overlap src.
func (s *State) AppendEncrypt(dst, src []byte) []byte {
	ret, out := mem.SliceForAppend(dst, len(src))
	_ = s.Encrypt(out, src) // out is exactly len(src) bytes
	return ret
}

// AppendDecrypt decrypts src and appends the plaintext to dst, returning the resulting slice.
//
// To reuse src's storage for the decrypted output, use src[:0] as dst. Otherwise, the remaining capacity of dst must not
// overlap src.
func (s *State) AppendDecrypt(dst, src []byte) []byte {
	ret, out := mem.SliceForAppend(dst, len(src))
	_ = s.Decrypt(out, src) // out is exactly len(src) bytes
	return ret
}

// Sync resynchronizes the register to the ciphertext stream after a partial block, as OpenPGP's CFB variant requires.
// The register is set to the last BlockSize bytes of ciphertext and the unused keystream is discarded, so the next
// call starts a fresh block. If there is no unused keystream, Sync does nothing.
func (s *State) Sync() {
	if s.unused == 0 {
		return
	}

	bs := len(s.iv)
	copy(s.iv[s.unused:], s.iv[:bs-s.unused])
	copy(s.iv[:s.unused], s.lastIV[bs-s.unused:])
	s.unused = 0
}

// Clear zeros out the State's registers. The State must not be used afterward.
func (s *State) Clear() {
	clear(s.iv)
	clear(s.lastIV)
	s.unused = 0
}

// String returns the feedback register as a hex string.
func (s *State) String() string {
	return hex.EncodeToString(s.iv)
}

// UnmarshalBinary restores the State's registers from the given binary representation. The representation must have
// been produced by a State with the same block size. It implements encoding.BinaryUnmarshaler.
func (s *State) UnmarshalBinary(data []byte) error {
	bs := len(s.iv)
	if len(data) != 2+2*bs || int(data[0]) != bs {
		return ErrInvalidState
	}
	if int(data[1]) >= bs {
		return ErrInvalidState
	}
	s.unused = int(data[1])
	copy(s.iv, data[2:2+bs])
	copy(s.lastIV, data[2+bs:])
	return nil
}

// AppendBinary appends the binary representation of the State's registers to the given slice. It implements
// encoding.BinaryAppender.
func (s *State) AppendBinary(b []byte) ([]byte, error) {
	b = append(b, byte(len(s.iv)), byte(s.unused))
	return append(append(b, s.iv...), s.lastIV...), nil
}

// MarshalBinary returns the binary representation of the State's registers. It implements encoding.BinaryMarshaler.
func (s *State) MarshalBinary() (data []byte, err error) {
	return s.AppendBinary(make([]byte, 0, 2+2*len(s.iv)))
}

var (
	_ fmt.Stringer               = (*State)(nil)
	_ encoding.BinaryAppender    = (*State)(nil)
	_ encoding.BinaryMarshaler   = (*State)(nil)
	_ encoding.BinaryUnmarshaler = (*State)(nil)
)
