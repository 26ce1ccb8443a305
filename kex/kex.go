// Package kex establishes CFB session states between two parties with an ephemeral Ristretto255 Diffie-Hellman
// exchange.
//
// Each side generates a KeyPair and sends its public key to the other. The shared secret is expanded with HKDF-SHA256,
// salted with both public keys in initiator-then-responder order, into a cipher key and one IV per direction.
//
// The exchange is unauthenticated: it protects against passive eavesdroppers only. Callers which need to resist active
// attackers must authenticate the public keys out of band.
package kex

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/codahale/cfb"
	"github.com/codahale/cfb/algo"
	"github.com/gtank/ristretto255"
	"golang.org/x/crypto/hkdf"
)

// PublicKeySize is the size, in bytes, of an encoded public key.
const PublicKeySize = 32

// ErrInvalidPublicKey is returned when a peer's public key is not a valid, non-identity Ristretto255 element.
var ErrInvalidPublicKey = errors.New("cfb/kex: invalid public key")

// A KeyPair is an ephemeral Ristretto255 key pair.
type KeyPair struct {
	d *ristretto255.Scalar
	q *ristretto255.Element
}

// Generate returns a new KeyPair using randomness from the given reader.
func Generate(rand io.Reader) (*KeyPair, error) {
	var r [64]byte
	if _, err := io.ReadFull(rand, r[:]); err != nil {
		return nil, err
	}
	d, _ := ristretto255.NewScalar().SetUniformBytes(r[:])
	q := ristretto255.NewIdentityElement().ScalarBaseMult(d)
	return &KeyPair{d: d, q: q}, nil
}

// Public returns the encoded public key.
func (k *KeyPair) Public() []byte {
	return k.q.Bytes()
}

// Agree combines the KeyPair with the peer's public key and returns a pair of CFB states for the named algorithm: send
// encrypts data for the peer, recv decrypts data from the peer. Initiator must be true on exactly one side.
func (k *KeyPair) Agree(alg string, peer []byte, initiator bool) (send, recv *cfb.State, err error) {
	info, ok := algo.Lookup(alg)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", algo.ErrUnknownAlgorithm, alg)
	}

	qP, err := ristretto255.NewIdentityElement().SetCanonicalBytes(peer)
	if err != nil || qP.Equal(ristretto255.NewIdentityElement()) == 1 {
		return nil, nil, ErrInvalidPublicKey
	}
	ss := ristretto255.NewIdentityElement().ScalarMult(k.d, qP).Bytes()

	// Salt with both public keys in a fixed order so both sides derive the same keys.
	var salt []byte
	if initiator {
		salt = append(k.Public(), peer...)
	} else {
		salt = append(append([]byte(nil), peer...), k.Public()...)
	}

	keySize, bs := info.DefaultKeySize(), info.BlockSize
	okm := make([]byte, keySize+2*bs)
	if _, err := io.ReadFull(hkdf.New(sha256.New, ss, salt, []byte("cfb/kex "+alg)), okm); err != nil {
		return nil, nil, err
	}
	defer clear(okm)

	key := okm[:keySize]
	sendIV, recvIV := okm[keySize:keySize+bs], okm[keySize+bs:]
	if !initiator {
		sendIV, recvIV = recvIV, sendIV
	}

	if send, err = algo.NewCFB(alg, key, sendIV); err != nil {
		return nil, nil, err
	}
	if recv, err = algo.NewCFB(alg, key, recvIV); err != nil {
		return nil, nil, err
	}
	return send, recv, nil
}

// Exchange generates a KeyPair, swaps public keys with the peer over rw, and returns the agreed states. The initiator
// writes its public key first; the responder reads first.
func Exchange(rw io.ReadWriter, rand io.Reader, alg string, initiator bool) (send, recv *cfb.State, err error) {
	k, err := Generate(rand)
	if err != nil {
		return nil, nil, err
	}

	peer := make([]byte, PublicKeySize)
	if initiator {
		if _, err := rw.Write(k.Public()); err != nil {
			return nil, nil, err
		}
		if _, err := io.ReadFull(rw, peer); err != nil {
			return nil, nil, err
		}
	} else {
		if _, err := io.ReadFull(rw, peer); err != nil {
			return nil, nil, err
		}
		if _, err := rw.Write(k.Public()); err != nil {
			return nil, nil, err
		}
	}

	return k.Agree(alg, peer, initiator)
}
