//go:build amd64 && !purego

package accel

import "golang.org/x/sys/cpu"

// UseSIMD is set if the current CPU supports AVX2.
var UseSIMD = cpu.X86.HasAVX2 //nolint:gochecknoglobals // should only check once
