package cfb

import "crypto/cipher"

// NewEncrypter returns a cipher.Stream which encrypts with CFB mode using the given Block and IV.
//
// Unlike State.Encrypt, the returned stream's XORKeyStream panics if dst is shorter than src, as the standard library's
// streams do.
func NewEncrypter(b Block, iv []byte) cipher.Stream {
	return &stream{s: New(b, iv), decrypt: false}
}

// NewDecrypter returns a cipher.Stream which decrypts with CFB mode using the given Block and IV.
//
// Unlike State.Decrypt, the returned stream's XORKeyStream panics if dst is shorter than src, as the standard library's
// streams do.
func NewDecrypter(b Block, iv []byte) cipher.Stream {
	return &stream{s: New(b, iv), decrypt: true}
}

type stream struct {
	s       *State
	decrypt bool
}

func (x *stream) XORKeyStream(dst, src []byte) {
	var err error
	if x.decrypt {
		err = x.s.Decrypt(dst, src)
	} else {
		err = x.s.Encrypt(dst, src)
	}

	if err != nil {
		panic("cfb: output smaller than input")
	}
}

var _ cipher.Stream = (*stream)(nil)
