//go:build arm64 && !purego

package accel

import "golang.org/x/sys/cpu"

// UseSIMD is set if the current CPU supports Advanced SIMD.
var UseSIMD = cpu.ARM64.HasASIMD //nolint:gochecknoglobals // should only check once
