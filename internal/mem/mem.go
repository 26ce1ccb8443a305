// Package mem provides byte-slice helpers shared by the CFB state and its accelerators.
package mem

import (
	"crypto/subtle"
	"slices"
	"unsafe"
)

// XOR XORs a and b into dst. Uses subtle.XORBytes for slices larger than
// 16 bytes (which benefits from SIMD) and a scalar loop for small slices.
func XOR(dst, a, b []byte) {
	if len(dst) > 16 {
		subtle.XORBytes(dst, a, b)
	} else {
		for i := range dst {
			dst[i] = a[i] ^ b[i]
		}
	}
}

// SliceForAppend takes a slice and a requested number of bytes. It returns a
// slice with the contents of the given slice followed by that many bytes and a
// second slice that aliases into it and contains only the extra bytes. If the
// original slice has sufficient capacity, then no allocation is performed.
func SliceForAppend(in []byte, n int) (head, tail []byte) {
	head = slices.Grow(in, n)
	head = head[:len(in)+n]
	tail = head[len(in):]
	return head, tail
}

// AnyOverlap reports whether x and y share memory at any (not necessarily
// corresponding) index.
func AnyOverlap(x, y []byte) bool {
	return len(x) > 0 && len(y) > 0 &&
		uintptr(unsafe.Pointer(&x[0])) <= uintptr(unsafe.Pointer(&y[len(y)-1])) &&
		uintptr(unsafe.Pointer(&y[0])) <= uintptr(unsafe.Pointer(&x[len(x)-1]))
}

// InexactOverlap reports whether x and y share memory at any non-corresponding
// index. Slices which start at the same address are allowed to alias.
func InexactOverlap(x, y []byte) bool {
	if len(x) == 0 || len(y) == 0 || &x[0] == &y[0] {
		return false
	}
	return AnyOverlap(x, y)
}
