package cfb_test

import (
	"encoding/hex"

	"github.com/codahale/cfb"
	"github.com/codahale/cfb/accel"
)

var blockSizes = []int{1, 4, 8, 16, 32}

var accelerators = []struct {
	name string
	a    cfb.Accelerator
}{
	{"scalar", nil},
	{"pipelined", accel.Pipelined{}},
}

// addOne is a toy block cipher which adds one to every byte of the block.
type addOne int

func (a addOne) BlockSize() int {
	return int(a)
}

func (a addOne) Encrypt(dst, src []byte) {
	for i := range int(a) {
		dst[i] = src[i] + 1
	}
}

// permBlock is a toy block cipher which mixes each byte with its neighbor and its position, so that misaligned
// keystream shows up in the output.
type permBlock int

func (p permBlock) BlockSize() int {
	return int(p)
}

func (p permBlock) Encrypt(dst, src []byte) {
	n := int(p)
	var t [cfb.MaxBlockSize]byte
	copy(t[:n], src[:n])
	for i := range n {
		dst[i] = t[(i+1)%n]*5 + byte(i) + 0x3b
	}
}

// countingAccelerator wraps an accelerator and counts its calls.
type countingAccelerator struct {
	a        cfb.Accelerator
	enc, dec int
}

func (c *countingAccelerator) EncryptBlocks(b cfb.Block, iv, dst, src []byte) {
	c.enc++
	c.a.EncryptBlocks(b, iv, dst, src)
}

func (c *countingAccelerator) DecryptBlocks(b cfb.Block, iv, dst, src []byte) {
	c.dec++
	c.a.DecryptBlocks(b, iv, dst, src)
}

// acceleratedBlock is a block cipher which provides its own accelerator.
type acceleratedBlock struct {
	cfb.Block
	calls int
}

func (a *acceleratedBlock) EncryptBlocks(_ cfb.Block, iv, dst, src []byte) {
	a.calls++
	accel.Pipelined{}.EncryptBlocks(a.Block, iv, dst, src)
}

func (a *acceleratedBlock) DecryptBlocks(_ cfb.Block, iv, dst, src []byte) {
	a.calls++
	accel.Pipelined{}.DecryptBlocks(a.Block, iv, dst, src)
}

func sequence(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i*7 + 1)
	}
	return b
}

func repeat(v, n int) []int {
	s := make([]int, n)
	for i := range s {
		s[i] = v
	}
	return s
}

func mustHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

var (
	_ cfb.Accelerator = (*countingAccelerator)(nil)
	_ cfb.Accelerator = (*acceleratedBlock)(nil)
)
