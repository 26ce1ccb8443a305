//go:build (!amd64 && !arm64) || purego

package accel

// UseSIMD is set if the current CPU supports wide SIMD XORs.
var UseSIMD = false //nolint:gochecknoglobals // should only check once
