package cfb

import "github.com/codahale/cfb/internal/mem"

// encryptBlock XORs src into the keystream k and copies the result, now ciphertext, to dst:
//
//	for i := range len(k) { k[i] ^= src[i]; dst[i] = k[i] }
func encryptBlock(dst, k, src []byte) {
	mem.XOR(k, k, src)
	copy(dst, k)
}

// decryptBlock recovers plaintext and feeds the ciphertext back into k in a single pass:
// plaintext[i] = k[i] ^ ciphertext[i]; k[i] = ciphertext[i].
func decryptBlock(plaintext, k, ciphertext []byte) {
	// Process byte-by-byte so that ciphertext[i] is captured before plaintext[i]
	// is written, keeping this correct even when plaintext aliases ciphertext.
	for i := range len(k) {
		c := ciphertext[i]
		plaintext[i] = k[i] ^ c
		k[i] = c
	}
}
