// Package algo selects and keys the block ciphers which CFB mode runs over.
//
// Each algorithm is registered under a name like "aes-256" or "blowfish", with the key sizes it accepts and its block
// size. NewCFB combines key setup, IV validation, and accelerator detection into a ready-to-use cfb.State.
package algo

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"errors"
	"fmt"
	"slices"

	"github.com/codahale/cfb"
	"github.com/codahale/cfb/accel"
	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
)

var (
	// ErrUnknownAlgorithm is returned when an algorithm name is not registered.
	ErrUnknownAlgorithm = errors.New("cfb/algo: unknown algorithm")

	// ErrInvalidKeySize is returned when a key's length is not one the algorithm accepts.
	ErrInvalidKeySize = errors.New("cfb/algo: invalid key size")

	// ErrInvalidIVSize is returned when an IV's length does not equal the algorithm's block size.
	ErrInvalidIVSize = errors.New("cfb/algo: invalid IV size")
)

// Info describes a registered block cipher.
type Info struct {
	// Name is the algorithm's registered name.
	Name string

	// KeySizes are the key lengths, in bytes, which the algorithm accepts. A nil slice means the algorithm accepts any
	// length between MinKeySize and MaxKeySize.
	KeySizes []int

	// MinKeySize and MaxKeySize bound the key length for algorithms with variable-length keys.
	MinKeySize, MaxKeySize int

	// BlockSize is the algorithm's block size in bytes.
	BlockSize int

	newCipher func(key []byte) (cipher.Block, error)
}

// ValidKeySize returns true if a key of n bytes is acceptable for the algorithm.
func (i Info) ValidKeySize(n int) bool {
	if i.KeySizes != nil {
		return slices.Contains(i.KeySizes, n)
	}
	return n >= i.MinKeySize && n <= i.MaxKeySize
}

// DefaultKeySize returns the key size, in bytes, to use when generating or deriving a key for the algorithm.
func (i Info) DefaultKeySize() int {
	if i.KeySizes != nil {
		return i.KeySizes[len(i.KeySizes)-1]
	}
	return i.MaxKeySize
}

//nolint:gochecknoglobals // read-only registry
var registry = map[string]Info{}

func register(info Info) {
	registry[info.Name] = info
}

//nolint:gochecknoinits // populates the read-only registry
func init() {
	register(Info{Name: "aes-128", KeySizes: []int{16}, BlockSize: aes.BlockSize, newCipher: aes.NewCipher})
	register(Info{Name: "aes-192", KeySizes: []int{24}, BlockSize: aes.BlockSize, newCipher: aes.NewCipher})
	register(Info{Name: "aes-256", KeySizes: []int{32}, BlockSize: aes.BlockSize, newCipher: aes.NewCipher})
	register(Info{Name: "des", KeySizes: []int{8}, BlockSize: des.BlockSize, newCipher: des.NewCipher})
	register(Info{Name: "3des", KeySizes: []int{24}, BlockSize: des.BlockSize, newCipher: des.NewTripleDESCipher})
	register(Info{
		Name:       "blowfish",
		MinKeySize: 1,
		MaxKeySize: 56,
		BlockSize:  blowfish.BlockSize,
		newCipher: func(key []byte) (cipher.Block, error) {
			return blowfish.NewCipher(key)
		},
	})
	register(Info{
		Name:      "cast5",
		KeySizes:  []int{cast5.KeySize},
		BlockSize: cast5.BlockSize,
		newCipher: func(key []byte) (cipher.Block, error) {
			return cast5.NewCipher(key)
		},
	})
}

// Names returns the names of all registered algorithms, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the Info for the named algorithm, if it is registered.
func Lookup(name string) (Info, bool) {
	info, ok := registry[name]
	return info, ok
}

// NewBlock returns the named block cipher, keyed with the given key.
func NewBlock(name string, key []byte) (cipher.Block, error) {
	info, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, name)
	}

	if !info.ValidKeySize(len(key)) {
		return nil, fmt.Errorf("%w: %s does not accept %d-byte keys", ErrInvalidKeySize, name, len(key))
	}

	b, err := info.newCipher(key)
	if err != nil {
		return nil, fmt.Errorf("cfb/algo: %s: %w", name, err)
	}
	return b, nil
}

// NewCFB returns a cfb.State for the named block cipher, keyed with the given key and starting with the given IV. If
// the current CPU supports it, the State uses a bulk accelerator.
func NewCFB(name string, key, iv []byte) (*cfb.State, error) {
	b, err := NewBlock(name, key)
	if err != nil {
		return nil, err
	}

	if len(iv) != b.BlockSize() {
		return nil, fmt.Errorf("%w: %s needs a %d-byte IV, got %d", ErrInvalidIVSize, name, b.BlockSize(), len(iv))
	}

	return cfb.NewWithAccelerator(b, iv, accel.Detect()), nil
}
